// Package similarity provides string similarity primitives for fuzzy
// duplicate detection. Ratio follows the sequence matcher algorithm:
// recursively find the longest common substring and sum the matched
// lengths, scoring 2*M/T where T is the combined length.
package similarity

import (
	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// Ratio returns a similarity score in [0, 1] for the raw strings.
// Two empty strings are considered identical.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := matchingSize(ra, rb)
	return 2.0 * float64(matched) / float64(total)
}

// Text compares two strings case-insensitively with surrounding
// whitespace ignored. A blank input on either side scores 0.
func Text(a, b string) float64 {
	na := normalizers.ApplyChain(a, "trim", "lowercase")
	nb := normalizers.ApplyChain(b, "trim", "lowercase")
	if na == "" || nb == "" {
		return 0.0
	}
	return Ratio(na, nb)
}

// Exact returns 1 when the strings are identical after trimming and
// lowercasing, 0 otherwise.
func Exact(a, b string) float64 {
	if normalizers.ApplyChain(a, "trim", "lowercase") == normalizers.ApplyChain(b, "trim", "lowercase") {
		return 1.0
	}
	return 0.0
}

// Digits compares only the digit characters of both strings. Useful for
// phone numbers and formatted document numbers. A side with no digits
// scores 0.
func Digits(a, b string) float64 {
	na := normalizers.DigitsOnly(a)
	nb := normalizers.DigitsOnly(b)
	if na == "" || nb == "" {
		return 0.0
	}
	return Ratio(na, nb)
}

// matchingSize sums the lengths of all matching blocks between a and b.
func matchingSize(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingSize(a[:ai], b[:bi])
	total += matchingSize(a[ai+size:], b[bi+size:])
	return total
}

// longestMatch finds the longest common substring of a and b, returning
// its start position in each and its length. Earliest match in a wins
// ties, then earliest in b.
func longestMatch(a, b []rune) (int, int, int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	bestI, bestJ, bestSize := 0, 0, 0
	// lengths[j] holds the length of the match ending at a[i-1], b[j-1]
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > bestSize {
					bestSize = cur[j]
					bestI = i - cur[j]
					bestJ = j - cur[j]
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}

	return bestI, bestJ, bestSize
}
