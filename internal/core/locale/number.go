package locale

import (
	"strconv"
	"strings"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// Number interprets a cell as a monetary value. Typed numbers pass through
// unchanged; strings go through the locale heuristic. Unparseable input
// coerces to 0 rather than failing the row.
func Number(cell domain.Cell) float64 {
	switch cell.Kind {
	case domain.CellNumber:
		return cell.Number
	case domain.CellText:
		v, err := parseDecimalString(cell.Text)
		if err != nil {
			return 0
		}
		return v
	}
	return 0
}

// OptionalNumber is Number for non-required numeric fields: instead of
// coercing to 0 it reports absence, so a missing exchange rate is not
// mistaken for a rate of zero.
func OptionalNumber(cell domain.Cell) (float64, bool) {
	switch cell.Kind {
	case domain.CellNumber:
		return cell.Number, true
	case domain.CellText:
		if strings.TrimSpace(cell.Text) == "" {
			return 0, false
		}
		v, err := parseDecimalString(cell.Text)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// parseDecimalString resolves Turkish/anglo separator ambiguity: when both
// comma and dot are present the later one is the decimal point; a lone
// comma is always decimal. A lone dot stays decimal, so thousand-grouped
// integers like "1.234" read as 1.234 — inherited behavior, kept as is.
func parseDecimalString(val string) (float64, error) {
	s := strings.TrimSpace(val)
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimPrefix(strings.TrimSuffix(s, ")"), "(")
	}
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimPrefix(s, "-")
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	}

	// Drop currency symbols and any other residue (₺, TL, TRY, $, €...).
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" {
		return 0, strconv.ErrSyntax
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if neg {
		f = -f
	}
	return f, nil
}
