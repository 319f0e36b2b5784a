package sheet

import (
	"errors"

	"strings"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/locale"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// ErrHeaderNotDetected is the structural failure for a file whose header
// row cannot be located. It is fatal only to that file.
var ErrHeaderNotDetected = errors.New("header row not detected")

const (
	defaultWindow    = 50
	dateSampleWindow = 40
	dateMinSupport   = 5
)

// keyword group indices with fixed meaning across sets.
const (
	groupCode = iota
	groupAmount
	groupDate
	// further groups are document-specific
)

// keywordSets holds folded synonym groups per document type. Group 0 is
// always the code/identity concept and group 1 the primary amount, which
// the detector treats as the mandatory structural pair.
var keywordSets = map[domain.DocumentType][][]string{
	domain.DocEInvoice: {
		{"fatura no", "fatura numara", "belge no", "ettn"},
		{"tutar", "toplam", "odenecek"},
		{"tarih"},
		{"unvan", "alici", "satici"},
		{"vkn", "vergi"},
		{"para birimi", "doviz"},
		{"kur"},
	},
	domain.DocAccountingVAT: {
		{"hesap kodu", "hesap no"},
		{"borc", "alacak"},
		{"tarih"},
		{"aciklama"},
		{"fis no", "yevmiye"},
		{"hesap adi"},
	},
	domain.DocAccountingMatrah: {
		{"hesap kodu", "hesap no"},
		{"matrah", "borc", "alacak"},
		{"tarih"},
		{"aciklama"},
		{"fis no", "yevmiye"},
	},
	domain.DocLedger: {
		{"hesap kodu", "hesap no"},
		{"borc"},
		{"tarih"},
		{"alacak"},
		{"aciklama"},
		{"fis no", "yevmiye", "evrak"},
	},
}

// DetectOptions tunes the header scan.
type DetectOptions struct {
	// Window caps how many leading rows are scanned (≤50; 0 = default).
	Window int
	// DateRequired enables the statistical date-column fallback when no
	// header cell matches a date keyword.
	DateRequired bool
}

// Detect scans a grid top-down for its header row. A row qualifies when
// its folded cells hit at least two distinct keyword groups; for the
// ledger type the account-code and debit groups must both hit in the same
// row. The date column is resolved by keyword, with a statistical
// fallback over a sample of following rows.
func Detect(grid *domain.RawGrid, doc domain.DocumentType, opts DetectOptions) (*domain.HeaderMap, error) {
	groups, ok := keywordSets[doc]
	if !ok {
		return nil, ErrHeaderNotDetected
	}

	window := opts.Window
	if window <= 0 || window > defaultWindow {
		window = defaultWindow
	}
	if window > len(grid.Rows) {
		window = len(grid.Rows)
	}

	for i := 0; i < window; i++ {
		hits := groupHits(grid.Rows[i], groups)
		if !qualifies(doc, hits) {
			continue
		}
		header := &domain.HeaderMap{
			RowIndex:   i,
			Labels:     rowLabels(grid.Rows[i]),
			DateColumn: dateColumnByKeyword(grid.Rows[i], groups[groupDate]),
		}
		if header.DateColumn < 0 && opts.DateRequired {
			header.DateColumn = statisticalDateColumn(grid, i)
		}
		return header, nil
	}
	return nil, ErrHeaderNotDetected
}

func qualifies(doc domain.DocumentType, hits map[int]bool) bool {
	if doc == domain.DocLedger {
		// ledger exports share many labels with mizan files; requiring
		// the code+debit pair avoids locking onto a totals banner
		return hits[groupCode] && hits[groupAmount]
	}
	return len(hits) >= 2
}

func groupHits(row []domain.Cell, groups [][]string) map[int]bool {
	hits := make(map[int]bool)
	for _, cell := range row {
		if cell.Kind != domain.CellText {
			continue
		}
		folded := locale.Fold(cell.Text)
		if folded == "" {
			continue
		}
		for gi, group := range groups {
			if hits[gi] {
				continue
			}
			for _, kw := range group {
				if strings.Contains(folded, kw) {
					hits[gi] = true
					break
				}
			}
		}
	}
	return hits
}

func dateColumnByKeyword(row []domain.Cell, dateGroup []string) int {
	for idx, cell := range row {
		if cell.Kind != domain.CellText {
			continue
		}
		folded := locale.Fold(cell.Text)
		for _, kw := range dateGroup {
			if strings.Contains(folded, kw) {
				return idx
			}
		}
	}
	return -1
}

// statisticalDateColumn counts date-like values per column over a sample
// window below the header and picks the densest column, provided it
// reaches minimum support. Failing to find one is not fatal; the caller
// simply has no date column.
func statisticalDateColumn(grid *domain.RawGrid, headerRow int) int {
	end := headerRow + 1 + dateSampleWindow
	if end > len(grid.Rows) {
		end = len(grid.Rows)
	}

	counts := make(map[int]int)
	for i := headerRow + 1; i < end; i++ {
		for col, cell := range grid.Rows[i] {
			if locale.LooksLikeDate(cell) {
				counts[col]++
			}
		}
	}

	best, bestCount := -1, 0
	for col, n := range counts {
		if n > bestCount || (n == bestCount && best >= 0 && col < best) {
			best, bestCount = col, n
		}
	}
	if bestCount < dateMinSupport {
		return -1
	}
	return best
}

func rowLabels(row []domain.Cell) []string {
	labels := make([]string, len(row))
	for i, cell := range row {
		labels[i] = CellString(cell)
	}
	return labels
}
