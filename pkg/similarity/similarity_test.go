package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatioIdenticalStrings(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("hello", "hello"))
}

func TestRatioBothEmpty(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("", ""))
}

func TestRatioOneEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Ratio("hello", ""))
	assert.Equal(t, 0.0, Ratio("", "hello"))
}

func TestRatioDisjointStrings(t *testing.T) {
	assert.Equal(t, 0.0, Ratio("abc", "xyz"))
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"joao silva", "joao da silva"},
		{"widget", "gadget"},
		{"acme corp", "acme corporation"},
	}
	for _, p := range pairs {
		assert.Equal(t, Ratio(p[0], p[1]), Ratio(p[1], p[0]), "ratio must be symmetric for %q / %q", p[0], p[1])
	}
}

func TestRatioPartialOverlap(t *testing.T) {
	// "abcd" vs "bcde": longest match "bcd" (3), total 8 -> 0.75
	assert.InDelta(t, 0.75, Ratio("abcd", "bcde"), 1e-9)
}

func TestRatioBounds(t *testing.T) {
	pairs := [][2]string{
		{"joao silva", "joao da silva"},
		{"a", "ab"},
		{"maria", "mariana"},
	}
	for _, p := range pairs {
		r := Ratio(p[0], p[1])
		assert.GreaterOrEqual(t, r, 0.0)
		assert.LessOrEqual(t, r, 1.0)
		assert.Greater(t, r, 0.0, "overlapping strings should score above zero")
		assert.Less(t, r, 1.0, "different strings should score below one")
	}
}

func TestTextIgnoresCaseAndWhitespace(t *testing.T) {
	assert.Equal(t, 1.0, Text("  Joao Silva ", "joao silva"))
}

func TestTextBlankInputScoresZero(t *testing.T) {
	assert.Equal(t, 0.0, Text("", ""))
	assert.Equal(t, 0.0, Text("   ", "joao silva"))
	assert.Equal(t, 0.0, Text("joao silva", ""))
}

func TestExact(t *testing.T) {
	assert.Equal(t, 1.0, Exact("ABC-123", "abc-123"))
	assert.Equal(t, 0.0, Exact("ABC-123", "abc-124"))
}

func TestDigits(t *testing.T) {
	assert.Equal(t, 1.0, Digits("(11) 98765-4321", "11987654321"))
	assert.Equal(t, 1.0, Digits("123.456.789-09", "12345678909"))
	assert.Equal(t, 0.0, Digits("no digits", "11987654321"))
}

func TestLongestMatch(t *testing.T) {
	i, j, size := longestMatch([]rune("abxcd"), []rune("abycd"))
	assert.Equal(t, 2, size)
	assert.Equal(t, 0, i)
	assert.Equal(t, 0, j)
}
