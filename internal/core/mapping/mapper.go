// Package mapping resolves canonical document fields to the columns of a
// detected header, with persisted template reuse keyed by header
// fingerprint.
package mapping

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/schollz/closestmatch"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/locale"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// Fingerprint derives the template-store key for a header: its folded
// labels, sorted and joined. Two files with the same label set share one
// fingerprint regardless of column order.
func Fingerprint(labels []string) string {
	folded := make([]string, 0, len(labels))
	for _, l := range labels {
		if f := locale.Fold(l); f != "" {
			folded = append(folded, f)
		}
	}
	sort.Strings(folded)
	return strings.Join(folded, "|")
}

// Suggest auto-maps each canonical field to the first header column whose
// normalized label contains the field label or vice versa. Optional fields
// that stay unmatched get one fuzzy attempt over the columns no
// containment match claimed; required fields never resolve fuzzily and
// are left for the caller to map explicitly.
func Suggest(specs []domain.CanonicalFieldSpec, header *domain.HeaderMap) domain.FieldMapping {
	foldedLabels := make([]string, len(header.Labels))
	for i, l := range header.Labels {
		foldedLabels[i] = locale.FoldTight(l)
	}

	result := make(domain.FieldMapping, len(specs))
	claimed := make(map[int]bool, len(specs))
	var unmatched []domain.CanonicalFieldSpec
	for _, spec := range specs {
		want := locale.FoldTight(spec.Label)
		matched := false
		for i, have := range foldedLabels {
			if have == "" || want == "" || claimed[i] {
				continue
			}
			if strings.Contains(have, want) || strings.Contains(want, have) {
				result[spec.Key] = domain.FieldSource{Columns: []string{header.Labels[i]}}
				claimed[i] = true
				matched = true
				break
			}
		}
		if !matched && !spec.Required {
			unmatched = append(unmatched, spec)
		}
	}

	fuzzyKeys := make([]string, 0, len(foldedLabels))
	byFolded := make(map[string]string, len(foldedLabels))
	for i, fl := range foldedLabels {
		if fl == "" || claimed[i] {
			continue
		}
		if _, seen := byFolded[fl]; !seen {
			byFolded[fl] = header.Labels[i]
			fuzzyKeys = append(fuzzyKeys, fl)
		}
	}
	if len(fuzzyKeys) == 0 {
		return result
	}
	fuzzy := closestmatch.New(fuzzyKeys, []int{2, 3})
	for _, spec := range unmatched {
		if m := fuzzy.Closest(locale.FoldTight(spec.Label)); m != "" {
			result[spec.Key] = domain.FieldSource{Columns: []string{byFolded[m]}}
		}
	}
	return result
}

// Validate enforces the completeness contract: every required field must
// resolve to at least one real header column, and absent is only legal for
// optional fields. Normalization must not start while this fails.
func Validate(specs []domain.CanonicalFieldSpec, m domain.FieldMapping, header *domain.HeaderMap) error {
	index := columnIndex(header.Labels)
	for _, spec := range specs {
		src, ok := m[spec.Key]
		if spec.Required {
			if !ok || src.Absent || len(src.Columns) == 0 {
				return fmt.Errorf("required field %q is not mapped", spec.Key)
			}
		}
		if src.Absent {
			continue
		}
		for _, col := range src.Columns {
			if _, found := index[locale.Fold(col)]; !found {
				return fmt.Errorf("field %q maps to unknown column %q", spec.Key, col)
			}
		}
	}
	return nil
}

// Resolver reads canonical field values out of raw rows through a
// validated mapping.
type Resolver struct {
	sources map[string][]int
}

// NewResolver validates the mapping against the header and binds column
// positions. Multi-column fields keep their mapped order.
func NewResolver(specs []domain.CanonicalFieldSpec, m domain.FieldMapping, header *domain.HeaderMap) (*Resolver, error) {
	if err := Validate(specs, m, header); err != nil {
		return nil, err
	}
	index := columnIndex(header.Labels)
	sources := make(map[string][]int, len(m))
	for key, src := range m {
		if src.Absent {
			continue
		}
		var cols []int
		for _, col := range src.Columns {
			if idx, ok := index[locale.Fold(col)]; ok {
				cols = append(cols, idx)
			}
		}
		if len(cols) > 0 {
			sources[key] = cols
		}
	}
	return &Resolver{sources: sources}, nil
}

// Has reports whether a field resolved to any column.
func (r *Resolver) Has(key string) bool {
	return len(r.sources[key]) > 0
}

// Cells returns the mapped cells of a field for one row, in mapped order.
func (r *Resolver) Cells(row []domain.Cell, key string) []domain.Cell {
	cols, ok := r.sources[key]
	if !ok {
		return nil
	}
	cells := make([]domain.Cell, 0, len(cols))
	for _, c := range cols {
		if c < len(row) {
			cells = append(cells, row[c])
		}
	}
	return cells
}

// Text joins the textual values of a field's columns with single spaces.
func (r *Resolver) Text(row []domain.Cell, key string) string {
	var parts []string
	for _, cell := range r.Cells(row, key) {
		if s := cellText(cell); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Number sums the monetary values of a field's columns.
func (r *Resolver) Number(row []domain.Cell, key string) float64 {
	var sum float64
	for _, cell := range r.Cells(row, key) {
		sum += locale.Number(cell)
	}
	return sum
}

// OptionalNumber resolves a non-required numeric field, reporting absence
// instead of coercing to zero.
func (r *Resolver) OptionalNumber(row []domain.Cell, key string) (float64, bool) {
	var sum float64
	any := false
	for _, cell := range r.Cells(row, key) {
		if v, ok := locale.OptionalNumber(cell); ok {
			sum += v
			any = true
		}
	}
	return sum, any
}

// Date resolves the first parseable date among a field's columns.
func (r *Resolver) Date(row []domain.Cell, key string) *time.Time {
	for _, cell := range r.Cells(row, key) {
		if t := locale.Date(cell); t != nil {
			return t
		}
	}
	return nil
}

func columnIndex(labels []string) map[string]int {
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		f := locale.Fold(l)
		if f == "" {
			continue
		}
		if _, seen := index[f]; !seen {
			index[f] = i
		}
	}
	return index
}

func cellText(c domain.Cell) string {
	switch c.Kind {
	case domain.CellText:
		return strings.TrimSpace(c.Text)
	case domain.CellNumber:
		if c.Text != "" {
			return c.Text
		}
	}
	return ""
}
