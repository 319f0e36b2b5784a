package reconcile

import (
	"math"
	"sort"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// DefaultTolerance is the amount difference, in local currency units,
// still considered reconciled.
const DefaultTolerance = 0.25

// LocalCurrency is the ledger currency; e-invoice amounts in any other
// currency are converted by their stated exchange rate before comparison.
const LocalCurrency = "TRY"

// Classify is the pure diff engine: every key present on either side
// lands in at most one bucket, keys within tolerance produce no row, and
// quarantined rows pass through verbatim. Keys are processed in sorted
// order so identical inputs always yield identical reports.
func Classify(einvoices map[string]domain.EInvoiceRecord, aggregates map[string]*Aggregate, quarantined []domain.AccountingRecord, tolerance float64) *domain.ReconciliationReport {
	if tolerance < 0 {
		tolerance = DefaultTolerance
	}

	keys := make([]string, 0, len(einvoices)+len(aggregates))
	seen := make(map[string]bool, len(einvoices)+len(aggregates))
	for k := range einvoices {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range aggregates {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	report := &domain.ReconciliationReport{}
	for _, key := range keys {
		inv, inEInvoice := einvoices[key]
		agg, inAccounting := aggregates[key]

		switch {
		case inEInvoice && !inAccounting:
			report.MissingInAccounting = append(report.MissingInAccounting, domain.MissingInAccounting{
				InvoiceNumber: key,
				Amount:        inv.Amount,
				Currency:      inv.Currency,
				Record:        inv,
			})
		case !inEInvoice && inAccounting:
			// each contributing row surfaces individually so the reviewer
			// sees the actual postings, not a synthetic total
			report.MissingInEInvoice = append(report.MissingInEInvoice, agg.Rows...)
		default:
			local := LocalAmount(inv)
			delta := local - agg.Total
			if math.Abs(delta) > tolerance {
				report.AmountMismatches = append(report.AmountMismatches, domain.AmountMismatch{
					InvoiceNumber:    key,
					EInvoiceAmount:   local,
					AccountingAmount: agg.Total,
					Delta:            delta,
					Rows:             agg.Rows,
				})
			}
		}
	}

	report.Erroneous = append(report.Erroneous, quarantined...)
	return report
}

// LocalAmount converts an e-invoice amount to local currency using its
// stated exchange rate. Records without a usable rate pass through
// unchanged rather than failing.
func LocalAmount(rec domain.EInvoiceRecord) float64 {
	if rec.Currency != "" && rec.Currency != LocalCurrency && rec.ExchangeRate > 0 {
		return rec.Amount * rec.ExchangeRate
	}
	return rec.Amount
}
