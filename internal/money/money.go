// Package money normalizes locale-ambiguous numeric strings into exact
// decimal values.
//
// Bank statements in this system mix two separator conventions: Indonesian
// style ("1.500.000,00") and Anglo style ("1,500,000.00"). The source text
// carries no locale tag, so the roles of "." and "," have to be inferred
// from the shape of the number itself.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Normalize converts a numeric substring (digits, '.' and ',' only) into a
// decimal value. Unparseable input yields zero rather than an error: garbled
// amounts are excluded by the value-range filter upstream, not rejected here.
//
// Disambiguation rules, first match wins:
//  1. More than one '.'  → '.' is a thousands separator, ',' is decimal.
//  2. More than one ','  → ',' is a thousands separator, no decimal part.
//  3. One of each        → '.' is thousands, ',' is decimal.
//  4. A single ','       → ',' is the decimal separator.
//  5. Otherwise parse as-is.
//
// Single-group inputs like "1.234" are inherently ambiguous; rule 5 reads
// them as plain decimals. The true intent is not recoverable from the text
// alone, so no smarter inference is attempted.
func Normalize(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case dots == 1 && commas == 1:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case commas == 1:
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
