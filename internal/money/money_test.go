package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// Indonesian convention: dots group thousands, comma is decimal.
		{"1.234.567", "1234567"},
		{"1.500.000,00", "1500000"},
		{"1.234,56", "1234.56"},
		// Anglo convention: commas group thousands.
		{"1,234,567", "1234567"},
		{"10,000,000.00", "10000000"},
		// Single comma is a decimal separator.
		{"1234,56", "1234.56"},
		{"0,50", "0.5"},
		// Plain decimals pass through.
		{"25.99", "25.99"},
		{"1000", "1000"},
		{"0.00", "0"},
		// Single-group ambiguity: parsed as-is, not "improved".
		{"1.234", "1.234"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNormalize_Garbage(t *testing.T) {
	// Unparseable input yields zero, never an error.
	for _, input := range []string{"", " ", ".", ",", "..", "1.2.3.4.5,6,7", "12,34,56.78.90"} {
		got := Normalize(input)
		assert.True(t, got.IsZero(), "Normalize(%q) = %s, want 0", input, got)
	}
}
