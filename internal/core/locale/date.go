package locale

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// serialEpoch is the workbook serial-date origin (1899-12-30), the
// convention shared by every format the loader reads.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Serial values outside this window are almost certainly plain numbers,
// not dates (≈1995..≈2028).
const (
	serialMin = 35000
	serialMax = 47000
)

var dayFirstRegex = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{2}|\d{4})$`)
var isoRegex = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
var compactRegex = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)

// Date interprets a cell as a calendar date. Typed dates pass through,
// numbers are treated as workbook serial days (86400 seconds per day),
// and strings go through the accepted shapes. Anything unparseable or not
// a real calendar date yields nil; callers count such rows instead of
// aborting.
func Date(cell domain.Cell) *time.Time {
	switch cell.Kind {
	case domain.CellDate:
		t := cell.Date
		return &t
	case domain.CellNumber:
		return fromSerial(cell.Number)
	case domain.CellText:
		return ParseDateString(cell.Text)
	}
	return nil
}

// ParseDateString parses DD.MM.YYYY, DD/MM/YYYY, DD-MM-YYYY, YYYY-MM-DD
// and compact YYYYMMDD shapes, plus serial-day numbers that arrive as
// text. Every candidate is validated by round-trip reconstruction, so
// 31.02.2024 is rejected rather than normalized.
func ParseDateString(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if m := dayFirstRegex.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year = expandYear(year)
		}
		return validated(year, month, day)
	}
	if m := isoRegex.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return validated(year, month, day)
	}
	if m := compactRegex.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return validated(year, month, day)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromSerial(f)
	}
	return nil
}

// LooksLikeDate reports whether a cell would parse as a date, used by the
// statistical date-column fallback of the header detector.
func LooksLikeDate(cell domain.Cell) bool {
	return Date(cell) != nil
}

func fromSerial(serial float64) *time.Time {
	if serial < serialMin || serial > serialMax {
		return nil
	}
	secs := int64(serial * 86400)
	t := serialEpoch.Add(time.Duration(secs) * time.Second)
	// normalize away any intra-day fraction
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &t
}

func validated(year, month, day int) *time.Time {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return nil
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return nil
	}
	return &t
}

// expandYear widens two-digit years: 00-69 → 2000s, 70-99 → 1900s.
// Inherited heuristic, unchanged.
func expandYear(y int) int {
	if y < 70 {
		return 2000 + y
	}
	return 1900 + y
}
