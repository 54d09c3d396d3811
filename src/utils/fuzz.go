package utils

import (
	"math"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// FuzzRatio returns a 0..100 similarity score between two strings based on
// Levenshtein edit distance over runes. 100 means the strings are equal,
// 0 means no similarity at all. Comparison is case-sensitive.
func FuzzRatio(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	ratio := levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	return int(math.Round(ratio * 100))
}
