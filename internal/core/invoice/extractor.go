// Package invoice extracts e-invoice identifiers from free accounting
// text. Real ledger exports rarely carry the number in its own column;
// it hides inside descriptions, so extraction runs on normalized text.
package invoice

import (
	"regexp"
	"strings"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/locale"
)

// The GİB invoice number is a fixed 16-character shape: a 3-character
// alphanumeric series prefix, a 4-digit year and a 9-digit sequence.
var numberPattern = regexp.MustCompile(`[A-Z0-9]{3}(?:19|20)[0-9]{2}[0-9]{9}`)

// carryForwardKeywords marks summary and carried-forward rows that
// legitimately carry an amount without an invoice number. Both Turkish
// and ASCII-typed spellings appear in the wild.
var carryForwardKeywords = []string{
	"DEVIR", "DEVİR",
	"TOPLAM",
	"YEKUN", "YEKÜN",
	"NAKLI", "NAKLİ",
	"BAKIYE", "BAKİYE",
}

// Extraction is the result of scanning one record's candidate fields.
type Extraction struct {
	// Primary is the first distinct match, empty when none was found.
	Primary string `json:"primary,omitempty"`
	// All holds every distinct match in order of first appearance.
	All []string `json:"all,omitempty"`
	// Ambiguous is set when more than one distinct number was found.
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// Extract scans candidate fields (reference column, description...) for
// invoice numbers. Text is uppercased with Turkish casing and stripped of
// dots and spaces before matching, so "abc 2023.000000001" still hits.
func Extract(fields ...string) Extraction {
	var ex Extraction
	seen := make(map[string]bool)
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			continue
		}
		for _, m := range numberPattern.FindAllString(locale.UpperCompact(field), -1) {
			if seen[m] {
				continue
			}
			seen[m] = true
			ex.All = append(ex.All, m)
		}
	}
	if len(ex.All) > 0 {
		ex.Primary = ex.All[0]
	}
	ex.Ambiguous = len(ex.All) > 1
	return ex
}

// IsCarryForward reports whether the text names a summary or
// carried-forward row.
func IsCarryForward(text string) bool {
	compact := locale.UpperCompact(text)
	if compact == "" {
		return false
	}
	for _, kw := range carryForwardKeywords {
		if strings.Contains(compact, kw) {
			return true
		}
	}
	return false
}

// NeedsReview reports whether a row must be quarantined: a monetary row
// with no extractable number that is not a carry-forward or summary line
// cannot be reconciled.
func NeedsReview(amount float64, ex Extraction, text string) bool {
	return amount != 0 && ex.Primary == "" && !IsCarryForward(text)
}
