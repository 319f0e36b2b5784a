package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

var ledgerLabels = []string{"Hesap Kodu", "Hesap Adı", "Tarih", "Fiş No", "Açıklama", "Borç", "Alacak", "Döviz Cinsi", "Döviz Kuru"}

func ledgerMapping() domain.FieldMapping {
	return domain.FieldMapping{
		domain.FieldAccountCode:  {Columns: []string{"Hesap Kodu"}},
		domain.FieldAccountName:  {Columns: []string{"Hesap Adı"}},
		domain.FieldDate:         {Columns: []string{"Tarih"}},
		domain.FieldDocumentNo:   {Columns: []string{"Fiş No"}},
		domain.FieldDescription:  {Columns: []string{"Açıklama"}},
		domain.FieldDebit:        {Columns: []string{"Borç"}},
		domain.FieldCredit:       {Columns: []string{"Alacak"}},
		domain.FieldCurrency:     {Columns: []string{"Döviz Cinsi"}},
		domain.FieldExchangeRate: {Columns: []string{"Döviz Kuru"}},
	}
}

func ledgerGrid(rows ...[]string) (*domain.RawGrid, *domain.HeaderMap) {
	grid := &domain.RawGrid{}
	grid.Rows = append(grid.Rows, cellsOf(ledgerLabels))
	for _, r := range rows {
		grid.Rows = append(grid.Rows, cellsOf(r))
	}
	header := &domain.HeaderMap{RowIndex: 0, Labels: ledgerLabels, DateColumn: -1}
	return grid, header
}

func cellsOf(values []string) []domain.Cell {
	row := make([]domain.Cell, len(values))
	for i, v := range values {
		if v == "" {
			row[i] = domain.Cell{Kind: domain.CellEmpty}
			continue
		}
		row[i] = domain.Cell{Kind: domain.CellText, Text: v}
	}
	return row
}

func TestAnalyze_AccountAggregation(t *testing.T) {
	grid, header := ledgerGrid(
		[]string{"102.01", "Banka TL", "05.01.2024", "F-1", "tahsilat", "1.000,00", "0", "", ""},
		[]string{"102.01", "Banka TL", "10.01.2024", "F-2", "odeme", "0", "400,00", "", ""},
		[]string{"600.01", "Yurtiçi Satışlar", "05.01.2024", "F-1", "satis", "0", "1.000,00", "", ""},
	)

	analysis, err := Analyze(grid, header, ledgerMapping(), Options{})
	require.NoError(t, err)
	require.Len(t, analysis.Accounts, 2)

	bank := analysis.Accounts[0]
	assert.Equal(t, "102.01", bank.Code)
	assert.Equal(t, "Banka TL", bank.Name)
	assert.InDelta(t, 1000.0, bank.TotalDebit, 1e-9)
	assert.InDelta(t, 400.0, bank.TotalCredit, 1e-9)
	assert.InDelta(t, 600.0, bank.Balance, 1e-9)
	assert.InDelta(t, bank.TotalDebit-bank.TotalCredit, bank.Balance, 1e-9)

	require.Len(t, bank.Transactions, 2)
	assert.InDelta(t, 1000.0, bank.Transactions[0].Balance, 1e-9)
	assert.InDelta(t, 600.0, bank.Transactions[1].Balance, 1e-9)
}

func TestAnalyze_MonthlyDensity(t *testing.T) {
	var rows [][]string
	for i := 0; i < 10; i++ {
		rows = append(rows, []string{"102.01", "", fmt.Sprintf("%02d.01.2024", i+1), fmt.Sprintf("J-%d", i), "ocak", "100,00", "0", "", ""})
	}
	for i := 0; i < 5; i++ {
		rows = append(rows, []string{"600.01", "", fmt.Sprintf("%02d.02.2024", i+1), fmt.Sprintf("S-%d", i), "subat", "0", "200,00", "", ""})
	}
	grid, header := ledgerGrid(rows...)

	analysis, err := Analyze(grid, header, ledgerMapping(), Options{})
	require.NoError(t, err)

	jan := analysis.MonthlyDensity[0]
	assert.Equal(t, 1, jan.Month)
	assert.Equal(t, 10, jan.Count)
	assert.InDelta(t, 1000.0, jan.Volume, 1e-9)
	assert.Equal(t, 1, jan.DistinctAccounts)
	assert.Equal(t, 10, jan.DistinctVouchers)

	feb := analysis.MonthlyDensity[1]
	assert.Equal(t, 5, feb.Count)
	assert.InDelta(t, 1000.0, feb.Volume, 1e-9)

	assert.Zero(t, analysis.MonthlyDensity[2].Count)
}

func TestAnalyze_WatchListAndRollup(t *testing.T) {
	grid, header := ledgerGrid(
		[]string{"600.01", "Yurtiçi Satışlar A", "05.01.2024", "F-1", "satis", "0", "500,00", "", ""},
		[]string{"600.02", "Satışlar", "06.01.2024", "F-2", "satis", "0", "300,00", "", ""},
		[]string{"770.01", "Genel Giderler", "07.01.2024", "F-3", "gider", "100,00", "0", "", ""},
	)

	analysis, err := Analyze(grid, header, ledgerMapping(), Options{})
	require.NoError(t, err)

	require.Len(t, analysis.WatchList, 2)
	assert.Equal(t, "600.01", analysis.WatchList[0].Code)
	assert.Equal(t, "600.02", analysis.WatchList[1].Code)

	require.Len(t, analysis.PrefixRollup, 2)
	top := analysis.PrefixRollup[0]
	assert.Equal(t, "600", top.Prefix)
	assert.Equal(t, 2, top.Accounts)
	assert.InDelta(t, 800.0, top.TotalCredit, 1e-9)
	// shortest sub-account name represents the group
	assert.Equal(t, "Satışlar", top.Name)
}

func TestAnalyze_CustomWatchPrefixes(t *testing.T) {
	grid, header := ledgerGrid(
		[]string{"770.01", "Genel Giderler", "07.01.2024", "F-3", "gider", "100,00", "0", "", ""},
	)
	analysis, err := Analyze(grid, header, ledgerMapping(), Options{WatchPrefixes: []string{"770"}})
	require.NoError(t, err)
	require.Len(t, analysis.WatchList, 1)
	assert.Equal(t, "770.01", analysis.WatchList[0].Code)
}

func TestAnalyze_ForeignCurrencyBalances(t *testing.T) {
	grid, header := ledgerGrid(
		[]string{"102.02", "Banka USD", "05.01.2024", "F-1", "giris", "300,00", "0", "USD", "30,00"},
		[]string{"102.02", "Banka USD", "06.01.2024", "F-2", "cikis", "0", "150,00", "USD", "30,00"},
	)

	analysis, err := Analyze(grid, header, ledgerMapping(), Options{})
	require.NoError(t, err)
	require.Len(t, analysis.Accounts, 1)

	txs := analysis.Accounts[0].Transactions
	require.Len(t, txs, 2)
	assert.InDelta(t, 10.0, txs[0].FXDebit, 1e-9)
	assert.InDelta(t, 10.0, txs[0].FXBalance, 1e-9)
	assert.InDelta(t, 5.0, txs[1].FXCredit, 1e-9)
	assert.InDelta(t, 5.0, txs[1].FXBalance, 1e-9)
}

func TestAnalyze_FallbackDateColumnCountsInvalidDates(t *testing.T) {
	m := ledgerMapping()
	delete(m, domain.FieldDate)
	grid, header := ledgerGrid(
		[]string{"102.01", "", "hatali tarih", "F-1", "tahsilat", "100,00", "0", "", ""},
		[]string{"102.01", "", "", "F-2", "odeme", "0", "50,00", "", ""},
	)
	header.DateColumn = 2

	analysis, err := Analyze(grid, header, m, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, analysis.Summary.Records)
	// garbage in the detected date column counts, an empty cell does not
	assert.Equal(t, 1, analysis.Summary.InvalidDateRows)
}

func TestAnalyze_SkipsCarryForwardAndZeroRows(t *testing.T) {
	grid, header := ledgerGrid(
		[]string{"102.01", "", "01.01.2024", "", "Devir bakiyesi", "5.000,00", "0", "", ""},
		[]string{"102.01", "", "02.01.2024", "", "not", "0", "0", "", ""},
		[]string{"102.01", "", "03.01.2024", "F-1", "tahsilat", "250,00", "0", "", ""},
	)

	analysis, err := Analyze(grid, header, ledgerMapping(), Options{})
	require.NoError(t, err)
	require.Len(t, analysis.Accounts, 1)
	assert.Len(t, analysis.Accounts[0].Transactions, 1)
	assert.Equal(t, 2, analysis.Summary.SkippedRows)
	assert.Equal(t, 1, analysis.Summary.ZeroMovementRows)
}

func TestRecompute_UndatedRowsSortFirst(t *testing.T) {
	jan5 := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	jan2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	acc := &domain.AccountDetail{
		Code: "102.01",
		Transactions: []domain.Transaction{
			{Date: &jan5, Debit: 100},
			{Date: nil, Debit: 50},
			{Date: &jan2, Credit: 30},
		},
	}
	Recompute(acc)

	assert.Nil(t, acc.Transactions[0].Date)
	assert.True(t, jan2.Equal(*acc.Transactions[1].Date))
	assert.True(t, jan5.Equal(*acc.Transactions[2].Date))

	assert.InDelta(t, 50.0, acc.Transactions[0].Balance, 1e-9)
	assert.InDelta(t, 20.0, acc.Transactions[1].Balance, 1e-9)
	assert.InDelta(t, 120.0, acc.Transactions[2].Balance, 1e-9)
	assert.InDelta(t, acc.TotalDebit-acc.TotalCredit, acc.Balance, 1e-9)
}

func TestAmendTransaction(t *testing.T) {
	jan2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	jan5 := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	acc := &domain.AccountDetail{
		Code: "102.01",
		Transactions: []domain.Transaction{
			{Date: &jan2, Debit: 100},
			{Date: &jan5, Credit: 40},
		},
	}
	Recompute(acc)
	require.InDelta(t, 60.0, acc.Balance, 1e-9)

	err := AmendTransaction(acc, 1, domain.Transaction{Date: &jan5, Credit: 10})
	require.NoError(t, err)
	assert.InDelta(t, 90.0, acc.Balance, 1e-9)
	assert.InDelta(t, 90.0, acc.Transactions[1].Balance, 1e-9)

	assert.Error(t, AmendTransaction(acc, 5, domain.Transaction{}))
	assert.Error(t, AmendTransaction(acc, -1, domain.Transaction{}))
}

func TestComplexityScore_Capped(t *testing.T) {
	assert.Equal(t, 0, complexityScore(50, 5))
	assert.Equal(t, 3, complexityScore(200, 10))
	assert.Equal(t, 100, complexityScore(100000, 5000))
}
