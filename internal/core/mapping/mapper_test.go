package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

func header(labels ...string) *domain.HeaderMap {
	return &domain.HeaderMap{RowIndex: 0, Labels: labels, DateColumn: -1}
}

func TestFingerprint_OrderIndependent(t *testing.T) {
	a := Fingerprint([]string{"Hesap Kodu", "Borç", "Alacak"})
	b := Fingerprint([]string{"Alacak", "Hesap Kodu", "Borç"})
	assert.Equal(t, a, b)
}

func TestFingerprint_FoldsLabels(t *testing.T) {
	a := Fingerprint([]string{"AÇIKLAMA", "BORÇ"})
	b := Fingerprint([]string{"aciklama", "borc"})
	assert.Equal(t, a, b)
}

func TestFingerprint_SkipsEmptyLabels(t *testing.T) {
	a := Fingerprint([]string{"Borç", "", "  "})
	assert.Equal(t, "borc", a)
}

func TestSuggest_ContainmentMatch(t *testing.T) {
	specs, err := domain.Schema(domain.DocEInvoice, domain.ModeSales)
	require.NoError(t, err)
	h := header("Fatura No", "Fatura Tarihi", "Ödenecek Tutar", "Para Birimi")

	m := Suggest(specs, h)
	assert.Equal(t, []string{"Fatura No"}, m[domain.FieldInvoiceNumber].Columns)
	assert.Equal(t, []string{"Ödenecek Tutar"}, m[domain.FieldAmount].Columns)
	assert.Equal(t, []string{"Fatura Tarihi"}, m[domain.FieldDate].Columns)
	assert.Equal(t, []string{"Para Birimi"}, m[domain.FieldCurrency].Columns)
}

func TestSuggest_TurkishASCIIHeadersMatch(t *testing.T) {
	specs, err := domain.Schema(domain.DocAccountingVAT, domain.ModeSales)
	require.NoError(t, err)
	h := header("HESAP KODU", "ACIKLAMA", "BORC", "ALACAK")

	m := Suggest(specs, h)
	assert.Equal(t, []string{"HESAP KODU"}, m[domain.FieldAccountCode].Columns)
	assert.Equal(t, []string{"ACIKLAMA"}, m[domain.FieldDescription].Columns)
	assert.Equal(t, []string{"ALACAK"}, m[domain.FieldCredit].Columns)
}

func TestSuggest_RequiredFieldNeverResolvesFuzzily(t *testing.T) {
	specs, err := domain.Schema(domain.DocEInvoice, domain.ModeSales)
	require.NoError(t, err)
	h := header("Belge Numarasi", "Kalem Sayisi")

	m := Suggest(specs, h)
	_, mapped := m[domain.FieldAmount]
	assert.False(t, mapped, "required amount must stay unmapped instead of a fuzzy guess")
}

func TestSuggest_FuzzyOnlyOverUnclaimedColumns(t *testing.T) {
	specs, err := domain.Schema(domain.DocEInvoice, domain.ModeSales)
	require.NoError(t, err)
	h := header("Fatura No", "Ödenecek Tutar", "Fatura Tarihi", "Kur Bilgisi")

	m := Suggest(specs, h)
	// the only unclaimed column is the fuzzy candidate pool
	if src, ok := m[domain.FieldExchangeRate]; ok {
		assert.Equal(t, []string{"Kur Bilgisi"}, src.Columns)
	}
}

func TestSuggest_NoFuzzyWhenAllColumnsClaimed(t *testing.T) {
	specs, err := domain.Schema(domain.DocEInvoice, domain.ModeSales)
	require.NoError(t, err)
	h := header("Fatura No", "Ödenecek Tutar", "Fatura Tarihi")

	m := Suggest(specs, h)
	_, mapped := m[domain.FieldExchangeRate]
	assert.False(t, mapped)
	_, mapped = m[domain.FieldCurrency]
	assert.False(t, mapped)
}

func TestValidate_RequiredMustMap(t *testing.T) {
	specs, err := domain.Schema(domain.DocEInvoice, domain.ModeSales)
	require.NoError(t, err)
	h := header("Fatura No", "Ödenecek Tutar")

	m := domain.FieldMapping{
		domain.FieldInvoiceNumber: {Columns: []string{"Fatura No"}},
	}
	assert.Error(t, Validate(specs, m, h))

	m[domain.FieldAmount] = domain.FieldSource{Columns: []string{"Ödenecek Tutar"}}
	assert.NoError(t, Validate(specs, m, h))
}

func TestValidate_AbsentIllegalForRequired(t *testing.T) {
	specs, err := domain.Schema(domain.DocEInvoice, domain.ModeSales)
	require.NoError(t, err)
	h := header("Fatura No", "Ödenecek Tutar")

	m := domain.FieldMapping{
		domain.FieldInvoiceNumber: {Columns: []string{"Fatura No"}},
		domain.FieldAmount:        {Absent: true},
	}
	assert.Error(t, Validate(specs, m, h))
}

func TestValidate_UnknownColumn(t *testing.T) {
	specs, err := domain.Schema(domain.DocEInvoice, domain.ModeSales)
	require.NoError(t, err)
	h := header("Fatura No", "Ödenecek Tutar")

	m := domain.FieldMapping{
		domain.FieldInvoiceNumber: {Columns: []string{"Fatura No"}},
		domain.FieldAmount:        {Columns: []string{"Yok Böyle Sütun"}},
	}
	assert.Error(t, Validate(specs, m, h))
}

func TestResolver_MultiColumnTextAndSum(t *testing.T) {
	specs := []domain.CanonicalFieldSpec{
		{Key: domain.FieldDescription, Label: "Açıklama", Required: true},
		{Key: domain.FieldAmount, Label: "Tutar", Required: true},
	}
	h := header("Açıklama 1", "Açıklama 2", "Tutar A", "Tutar B")
	m := domain.FieldMapping{
		domain.FieldDescription: {Columns: []string{"Açıklama 1", "Açıklama 2"}},
		domain.FieldAmount:      {Columns: []string{"Tutar A", "Tutar B"}},
	}
	r, err := NewResolver(specs, m, h)
	require.NoError(t, err)

	row := []domain.Cell{
		{Kind: domain.CellText, Text: "mal"},
		{Kind: domain.CellText, Text: "alimi"},
		{Kind: domain.CellText, Text: "100,50"},
		{Kind: domain.CellText, Text: "0,50"},
	}
	assert.Equal(t, "mal alimi", r.Text(row, domain.FieldDescription))
	assert.InDelta(t, 101.0, r.Number(row, domain.FieldAmount), 1e-9)
}

func TestTemplateStore_SaveGetOverwrite(t *testing.T) {
	store := NewTemplateStore()
	_, ok := store.Get("fp")
	assert.False(t, ok)

	store.Save("fp", domain.FieldMapping{
		domain.FieldAmount: {Columns: []string{"Tutar"}},
		domain.FieldDate:   {Columns: []string{"Tarih"}},
	})
	m, ok := store.Get("fp")
	require.True(t, ok)
	assert.Len(t, m, 2)

	// overwrite replaces the whole slot
	store.Save("fp", domain.FieldMapping{
		domain.FieldAmount: {Columns: []string{"Toplam"}},
	})
	m, ok = store.Get("fp")
	require.True(t, ok)
	assert.Len(t, m, 1)
	assert.Equal(t, []string{"Toplam"}, m[domain.FieldAmount].Columns)
}

func TestTemplateStore_GetReturnsCopy(t *testing.T) {
	store := NewTemplateStore()
	store.Save("fp", domain.FieldMapping{
		domain.FieldAmount: {Columns: []string{"Tutar"}},
	})
	m, _ := store.Get("fp")
	m[domain.FieldAmount].Columns[0] = "bozuk"
	delete(m, domain.FieldAmount)

	fresh, ok := store.Get("fp")
	require.True(t, ok)
	assert.Equal(t, []string{"Tutar"}, fresh[domain.FieldAmount].Columns)
}

func TestTemplateStore_FingerprintsSorted(t *testing.T) {
	store := NewTemplateStore()
	store.Save("b", domain.FieldMapping{domain.FieldAmount: {Columns: []string{"x"}}})
	store.Save("a", domain.FieldMapping{domain.FieldAmount: {Columns: []string{"x"}}})
	assert.Equal(t, []string{"a", "b"}, store.Fingerprints())
}
