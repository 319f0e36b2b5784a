// Package reconcile aggregates normalized records by invoice number and
// classifies the aggregate against the e-invoice side into discrepancy
// buckets.
package reconcile

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

var keyWhitespace = regexp.MustCompile(`\s+`)
var keyUpper = cases.Upper(language.Turkish)

// NormalizeKey canonicalizes an invoice number for matching: trimmed,
// inner whitespace collapsed, uppercased with Turkish casing.
func NormalizeKey(s string) string {
	s = strings.TrimSpace(keyWhitespace.ReplaceAllString(s, " "))
	return keyUpper.String(s)
}

// Aggregate is the accounting-side total of one invoice key, keeping the
// contributing rows for traceability.
type Aggregate struct {
	Key   string                    `json:"key"`
	Total float64                   `json:"total"`
	Rows  []domain.AccountingRecord `json:"rows"`
}

// AggregateAccounting groups accounting records by normalized invoice
// number, summing the signed amounts. Records without an extracted number
// cannot participate and are dropped here; validation-flagged rows never
// reach this point.
func AggregateAccounting(records []domain.AccountingRecord) map[string]*Aggregate {
	out := make(map[string]*Aggregate)
	for _, rec := range records {
		key := NormalizeKey(rec.InvoiceNumber)
		if key == "" {
			continue
		}
		agg, ok := out[key]
		if !ok {
			agg = &Aggregate{Key: key}
			out[key] = agg
		}
		agg.Total += rec.Amount
		agg.Rows = append(agg.Rows, rec)
	}
	return out
}

// BuildEInvoiceIndex keys e-invoice records by normalized invoice number.
// A duplicate key overwrites the earlier record (last write wins) —
// inherited behavior, kept deliberately.
func BuildEInvoiceIndex(records []domain.EInvoiceRecord) map[string]domain.EInvoiceRecord {
	out := make(map[string]domain.EInvoiceRecord, len(records))
	for _, rec := range records {
		key := NormalizeKey(rec.InvoiceNumber)
		if key == "" {
			continue
		}
		out[key] = rec
	}
	return out
}
