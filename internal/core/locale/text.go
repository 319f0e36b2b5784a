// Package locale interprets Turkish-locale spreadsheet values: free text
// normalization, decimal numbers and calendar dates.
package locale

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

var turkishLower = cases.Lower(language.Turkish)
var turkishUpper = cases.Upper(language.Turkish)

// stripMarks removes combining diacritical marks after NFD decomposition.
var stripMarks = transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}), norm.NFC)

// Fold normalizes text for header/label comparison: Turkish-aware
// lowercasing, diacritics removed, dotless ı mapped to i, whitespace
// collapsed. Folding both sides makes "AÇIKLAMA", "Aciklama" and
// "açıklama" compare equal.
func Fold(s string) string {
	out := turkishLower.String(s)
	out, _, _ = transform.String(stripMarks, out)
	out = strings.ReplaceAll(out, "ı", "i")
	out = whitespaceRegex.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// FoldTight is Fold with all whitespace removed, used for column-label
// containment matching.
func FoldTight(s string) string {
	return strings.ReplaceAll(Fold(s), " ", "")
}

// UpperCompact uppercases with Turkish casing and strips dots and spaces,
// the shape invoice-number extraction runs against. Turkish casing maps
// i to İ, which the ASCII invoice pattern would never match, so the
// dotted capital is folded back to I.
func UpperCompact(s string) string {
	out := turkishUpper.String(s)
	out = strings.ReplaceAll(out, "İ", "I")
	out = strings.ReplaceAll(out, ".", "")
	out = whitespaceRegex.ReplaceAllString(out, "")
	return out
}
