package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_SingleNumber(t *testing.T) {
	ex := Extract("ABC2023000000001 ek bilgi")
	assert.Equal(t, "ABC2023000000001", ex.Primary)
	assert.Equal(t, []string{"ABC2023000000001"}, ex.All)
	assert.False(t, ex.Ambiguous)
}

func TestExtract_DottedAndSpacedInput(t *testing.T) {
	ex := Extract("fatura abc 2023.000000001 odemesi")
	assert.Equal(t, "ABC2023000000001", ex.Primary)
}

func TestExtract_MultipleDistinctNumbers(t *testing.T) {
	ex := Extract("ABC2023000000001 ve ABC2023000000002 toplu odeme")
	assert.Equal(t, "ABC2023000000001", ex.Primary)
	assert.Len(t, ex.All, 2)
	assert.True(t, ex.Ambiguous)
}

func TestExtract_DuplicateCountsOnce(t *testing.T) {
	ex := Extract("ABC2023000000001", "iade ABC2023000000001")
	assert.Len(t, ex.All, 1)
	assert.False(t, ex.Ambiguous)
}

func TestExtract_LowercaseSeriesPrefix(t *testing.T) {
	// Turkish casing maps i to İ; the fold back to I keeps the prefix ASCII
	ex := Extract("gib2024000001234 tahsilat")
	assert.Equal(t, "GIB2024000001234", ex.Primary)
}

func TestExtract_ScansAllFields(t *testing.T) {
	ex := Extract("", "GIB2024000000123 tahsilat")
	assert.Equal(t, "GIB2024000000123", ex.Primary)
}

func TestExtract_NoMatch(t *testing.T) {
	ex := Extract("no fatura metni", "12345")
	assert.Empty(t, ex.Primary)
	assert.Empty(t, ex.All)
}

func TestExtract_RejectsWrongCentury(t *testing.T) {
	ex := Extract("ABC1823000000001")
	assert.Empty(t, ex.Primary)
}

func TestIsCarryForward(t *testing.T) {
	for _, s := range []string{"Devir bakiyesi", "DEVİR", "Sayfa toplamı", "YEKUN", "nakli yekun", "Genel Toplam"} {
		assert.True(t, IsCarryForward(s), "input %q", s)
	}
	for _, s := range []string{"", "mal alimi", "ABC2023000000001"} {
		assert.False(t, IsCarryForward(s), "input %q", s)
	}
}

func TestNeedsReview(t *testing.T) {
	none := Extract("aciklamasiz tahsilat")
	assert.True(t, NeedsReview(150.0, none, "aciklamasiz tahsilat"))
	assert.False(t, NeedsReview(0, none, "aciklamasiz tahsilat"))
	assert.False(t, NeedsReview(150.0, none, "devir bakiyesi"))

	found := Extract("ABC2023000000001")
	assert.False(t, NeedsReview(150.0, found, "ABC2023000000001"))
}
