package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzRatio(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{"identical", "Sviests Smiltene 82% 200g", "Sviests Smiltene 82% 200g", 100},
		{"both empty", "", "", 100},
		{"completely different", "abc", "xyz", 0},
		{"single substitution", "ab", "cb", 50},
		{"substitution in longer string", "abc", "abd", 67},
		{"empty against non-empty", "", "abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FuzzRatio(tt.a, tt.b))
		})
	}
}

func TestFuzzRatio_Symmetric(t *testing.T) {
	a, b := "Tualetes papire Zewa Delicate Care, gab", "Tualetes papirs Zewa Delicate Care, 8gab"
	assert.Equal(t, FuzzRatio(a, b), FuzzRatio(b, a))
	assert.Greater(t, FuzzRatio(a, b), 50)
}
