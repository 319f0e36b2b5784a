package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

func TestDetect_KeywordHeader(t *testing.T) {
	grid := gridFromStrings([][]string{
		{"Mükellef: Örnek Ltd."},
		{"Dönem: 2024/03"},
		{"Hesap Kodu", "Hesap Adı", "Tarih", "Açıklama", "Borç", "Alacak"},
		{"600.01", "Yurtiçi Satışlar", "05.03.2024", "satis", "0", "1000"},
	})
	header, err := Detect(grid, domain.DocAccountingVAT, DetectOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, header.RowIndex)
	assert.Equal(t, "Hesap Kodu", header.Labels[0])
	assert.Equal(t, 2, header.DateColumn)
}

func TestDetect_SingleKeywordDoesNotQualify(t *testing.T) {
	grid := gridFromStrings([][]string{
		{"Tarih: 05.03.2024"},
		{"rastgele", "metin"},
	})
	_, err := Detect(grid, domain.DocAccountingVAT, DetectOptions{})
	assert.ErrorIs(t, err, ErrHeaderNotDetected)
}

func TestDetect_NoHeaderAtAll(t *testing.T) {
	grid := gridFromStrings([][]string{{"a", "b"}, {"c", "d"}})
	_, err := Detect(grid, domain.DocEInvoice, DetectOptions{})
	assert.ErrorIs(t, err, ErrHeaderNotDetected)
}

func TestDetect_LedgerRequiresCodeAndDebitPair(t *testing.T) {
	// a mizan-style banner hits debit+credit but has no account code
	grid := gridFromStrings([][]string{
		{"Borç Toplamı", "Alacak Toplamı"},
		{"Hesap Kodu", "Tarih", "Borç", "Alacak"},
	})
	header, err := Detect(grid, domain.DocLedger, DetectOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, header.RowIndex)
}

func TestDetect_TurkishAndASCIILabelsEquivalent(t *testing.T) {
	grid := gridFromStrings([][]string{
		{"HESAP KODU", "ACIKLAMA", "BORC", "ALACAK"},
	})
	header, err := Detect(grid, domain.DocAccountingVAT, DetectOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, header.RowIndex)
}

func TestDetect_StatisticalDateFallback(t *testing.T) {
	rows := [][]string{
		{"Fatura No", "Tutar", "Islem"},
	}
	for i := 0; i < 6; i++ {
		rows = append(rows, []string{"ABC2024000000001", "100", "05.03.2024"})
	}
	grid := gridFromStrings(rows)

	header, err := Detect(grid, domain.DocEInvoice, DetectOptions{DateRequired: true})
	require.NoError(t, err)
	assert.Equal(t, 2, header.DateColumn)
}

func TestDetect_StatisticalFallbackNeedsSupport(t *testing.T) {
	rows := [][]string{
		{"Fatura No", "Tutar", "Islem"},
		{"ABC2024000000001", "100", "05.03.2024"},
		{"ABC2024000000002", "200", "06.03.2024"},
	}
	grid := gridFromStrings(rows)

	header, err := Detect(grid, domain.DocEInvoice, DetectOptions{DateRequired: true})
	require.NoError(t, err)
	// two date-like values are below minimum support
	assert.Equal(t, -1, header.DateColumn)
}

func TestDetect_WindowLimit(t *testing.T) {
	var rows [][]string
	for i := 0; i < 60; i++ {
		rows = append(rows, []string{"dolgu"})
	}
	rows = append(rows, []string{"Hesap Kodu", "Borç", "Alacak"})
	grid := gridFromStrings(rows)

	_, err := Detect(grid, domain.DocAccountingVAT, DetectOptions{})
	assert.ErrorIs(t, err, ErrHeaderNotDetected)
}
