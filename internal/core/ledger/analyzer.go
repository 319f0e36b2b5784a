// Package ledger builds per-account running balances and activity
// statistics out of a kebir (general ledger) export. It shares the header
// detector and locale parsers with the reconciliation pipeline.
package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/invoice"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/locale"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/mapping"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// defaultWatchPrefixes are the kebir prefixes always worth a look during
// a KDV review: cash, banks, receivables, payables, deductible and
// calculated VAT, taxes payable, domestic sales.
var defaultWatchPrefixes = []string{"100", "102", "120", "191", "320", "360", "391", "600"}

const (
	defaultTopN   = 10
	maxComplexity = 100
)

// Options tunes the analysis.
type Options struct {
	// TopN caps the prefix rollup length (0 = default 10).
	TopN int
	// WatchPrefixes overrides the built-in 3-digit watch list.
	WatchPrefixes []string
	// IncludeZeroMovement keeps rows with neither debit nor credit.
	IncludeZeroMovement bool
}

// Analyze streams ledger rows into account aggregates, a 12-month density
// table, the watch list and a prefix rollup. The aggregates are rebuilt
// wholesale from the file; only AmendTransaction mutates them afterwards.
func Analyze(grid *domain.RawGrid, header *domain.HeaderMap, m domain.FieldMapping, opts Options) (*domain.LedgerAnalysis, error) {
	specs, err := domain.Schema(domain.DocLedger, domain.ModeSales)
	if err != nil {
		return nil, err
	}
	resolver, err := mapping.NewResolver(specs, m, header)
	if err != nil {
		return nil, err
	}

	accounts := make(map[string]*domain.AccountDetail)
	var order []string

	var monthAccounts [12]map[string]struct{}
	var monthVouchers [12]map[string]struct{}
	var density [12]domain.MonthlyDensity
	for i := range density {
		density[i].Month = i + 1
		monthAccounts[i] = make(map[string]struct{})
		monthVouchers[i] = make(map[string]struct{})
	}
	allVouchers := make(map[string]struct{})

	var summary domain.ParseSummary
	for i := header.RowIndex + 1; i < len(grid.Rows); i++ {
		row := grid.Rows[i]
		summary.RowsRead++

		code := strings.TrimSpace(resolver.Text(row, domain.FieldAccountCode))
		if code == "" {
			summary.SkippedRows++
			continue
		}
		description := resolver.Text(row, domain.FieldDescription)
		if invoice.IsCarryForward(description) {
			summary.SkippedRows++
			continue
		}

		debit := resolver.Number(row, domain.FieldDebit)
		credit := resolver.Number(row, domain.FieldCredit)
		if debit == 0 && credit == 0 && !opts.IncludeZeroMovement {
			summary.ZeroMovementRows++
			summary.SkippedRows++
			continue
		}

		tx := domain.Transaction{
			Description: description,
			DocumentNo:  resolver.Text(row, domain.FieldDocumentNo),
			Debit:       debit,
			Credit:      credit,
			Currency:    strings.ToUpper(strings.TrimSpace(resolver.Text(row, domain.FieldCurrency))),
		}
		if rate, ok := resolver.OptionalNumber(row, domain.FieldExchangeRate); ok && rate > 0 {
			tx.ExchangeRate = rate
			tx.FXDebit = debit / rate
			tx.FXCredit = credit / rate
		}

		if cells := resolver.Cells(row, domain.FieldDate); len(cells) > 0 {
			for _, cell := range cells {
				if t := locale.Date(cell); t != nil {
					tx.Date = t
					break
				}
			}
			if tx.Date == nil {
				for _, cell := range cells {
					if cell.Kind != domain.CellEmpty {
						summary.InvalidDateRows++
						break
					}
				}
			}
		} else if header.DateColumn >= 0 && header.DateColumn < len(row) {
			tx.Date = locale.Date(row[header.DateColumn])
			if tx.Date == nil && row[header.DateColumn].Kind != domain.CellEmpty {
				summary.InvalidDateRows++
			}
		}

		acc, ok := accounts[code]
		if !ok {
			acc = &domain.AccountDetail{Code: code}
			accounts[code] = acc
			order = append(order, code)
		}
		name := strings.TrimSpace(resolver.Text(row, domain.FieldAccountName))
		if name != "" && (acc.Name == "" || len(name) < len(acc.Name)) {
			acc.Name = name
		}
		acc.Transactions = append(acc.Transactions, tx)
		summary.Records++

		if tx.DocumentNo != "" {
			allVouchers[tx.DocumentNo] = struct{}{}
		}
		if tx.Date != nil {
			mi := int(tx.Date.Month()) - 1
			density[mi].Count++
			density[mi].Volume += debit + credit
			monthAccounts[mi][code] = struct{}{}
			if tx.DocumentNo != "" {
				monthVouchers[mi][tx.DocumentNo] = struct{}{}
			}
		}
	}

	sort.Strings(order)
	result := &domain.LedgerAnalysis{Summary: summary}
	for _, code := range order {
		acc := accounts[code]
		Recompute(acc)
		result.Accounts = append(result.Accounts, acc)
	}

	for i := range density {
		density[i].DistinctAccounts = len(monthAccounts[i])
		density[i].DistinctVouchers = len(monthVouchers[i])
	}
	result.MonthlyDensity = density

	result.WatchList = watchList(result.Accounts, opts.WatchPrefixes)
	result.PrefixRollup = prefixRollup(result.Accounts, opts.TopN)
	result.ComplexityScore = complexityScore(summary.Records, len(allVouchers))
	return result, nil
}

// Recompute sorts an account's transactions chronologically (undated rows
// first, input order preserved on ties) and rebuilds totals, the running
// balance and the per-currency fx running balances. The balance invariant
// balance == totalDebit − totalCredit holds on return.
func Recompute(acc *domain.AccountDetail) {
	sort.SliceStable(acc.Transactions, func(i, j int) bool {
		di, dj := acc.Transactions[i].Date, acc.Transactions[j].Date
		switch {
		case di == nil && dj == nil:
			return false
		case di == nil:
			return true
		case dj == nil:
			return false
		}
		return di.Before(*dj)
	})

	acc.TotalDebit = 0
	acc.TotalCredit = 0
	running := 0.0
	fxRunning := make(map[string]float64)
	for i := range acc.Transactions {
		tx := &acc.Transactions[i]
		acc.TotalDebit += tx.Debit
		acc.TotalCredit += tx.Credit
		running += tx.Debit - tx.Credit
		tx.Balance = running
		if tx.Currency != "" && tx.Currency != "TRY" {
			fxRunning[tx.Currency] += tx.FXDebit - tx.FXCredit
			tx.FXBalance = fxRunning[tx.Currency]
		}
	}
	acc.Balance = acc.TotalDebit - acc.TotalCredit
}

// AmendTransaction replaces one transaction of an account and recomputes
// everything downstream of it. This is the single undo path; every other
// change rebuilds the whole analysis from the file.
func AmendTransaction(acc *domain.AccountDetail, index int, tx domain.Transaction) error {
	if index < 0 || index >= len(acc.Transactions) {
		return fmt.Errorf("transaction index %d out of range", index)
	}
	acc.Transactions[index] = tx
	Recompute(acc)
	return nil
}

func watchList(accounts []*domain.AccountDetail, prefixes []string) []*domain.AccountDetail {
	if len(prefixes) == 0 {
		prefixes = defaultWatchPrefixes
	}
	watched := make(map[string]bool, len(prefixes))
	for _, p := range prefixes {
		watched[p] = true
	}
	var out []*domain.AccountDetail
	for _, acc := range accounts {
		if len(acc.Code) >= 3 && watched[acc.Code[:3]] {
			out = append(out, acc)
		}
	}
	return out
}

// prefixRollup groups accounts by 3-digit kebir prefix and keeps the N
// busiest groups. The representative name is the shortest sub-account
// name, which usually is the parent account label — a heuristic, not a
// guarantee.
func prefixRollup(accounts []*domain.AccountDetail, topN int) []domain.PrefixSummary {
	if topN <= 0 {
		topN = defaultTopN
	}
	groups := make(map[string]*domain.PrefixSummary)
	var order []string
	for _, acc := range accounts {
		if len(acc.Code) < 3 {
			continue
		}
		prefix := acc.Code[:3]
		g, ok := groups[prefix]
		if !ok {
			g = &domain.PrefixSummary{Prefix: prefix}
			groups[prefix] = g
			order = append(order, prefix)
		}
		if acc.Name != "" && (g.Name == "" || len(acc.Name) < len(g.Name)) {
			g.Name = acc.Name
		}
		g.TotalDebit += acc.TotalDebit
		g.TotalCredit += acc.TotalCredit
		g.Balance += acc.Balance
		g.Accounts++
	}

	sort.SliceStable(order, func(i, j int) bool {
		gi, gj := groups[order[i]], groups[order[j]]
		vi := gi.TotalDebit + gi.TotalCredit
		vj := gj.TotalDebit + gj.TotalCredit
		if vi != vj {
			return vi > vj
		}
		return order[i] < order[j]
	})
	if len(order) > topN {
		order = order[:topN]
	}
	out := make([]domain.PrefixSummary, 0, len(order))
	for _, prefix := range order {
		out = append(out, *groups[prefix])
	}
	return out
}

// complexityScore is a bounded heuristic of how demanding a review will
// be: one point per 100 rows plus one per 10 distinct vouchers, capped.
func complexityScore(rows, vouchers int) int {
	score := rows/100 + vouchers/10
	if score > maxComplexity {
		return maxComplexity
	}
	return score
}
