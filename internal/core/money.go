// Package core provides money parsing and handling utilities.
//
// This file contains the numeric field sanitizer applied to quantity,
// unit price and extension columns.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a raw spreadsheet cell into an Amount.
//
// It strips currency symbols, thousands separators and surrounding whitespace.
// Parenthesis notation marks a negative value. Anything left that is not a
// number produces a missing amount rather than an error.
//
// Examples:
//
//	ParseAmount("$1,234.56") -> 1234.56
//	ParseAmount("(12.50)")   -> -12.5
//	ParseAmount("$(1.50)")   -> -1.5
//	ParseAmount("n/a")       -> missing
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing()
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ', '\u00a0', '\t':
			return -1
		}
		return r
	}, s)

	// Accounting negatives: "(12.50)", "$(1,234.56)", "( $12 )".
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	// Only a sign left, e.g. "$-".
	if s == "" || s == "-" || s == "+" {
		return Missing()
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Missing()
	}
	if negative {
		d = d.Neg()
	}
	f, _ := d.Float64()
	return Some(f)
}

// ParseQuantity is ParseAmount restricted to non-negative values.
func ParseQuantity(s string) Amount {
	a := ParseAmount(s)
	if a.Valid && a.Value < 0 {
		return Missing()
	}
	return a
}

// SanitizeColumn applies ParseAmount to every value of a column.
func SanitizeColumn(values []string) []Amount {
	out := make([]Amount, len(values))
	for i, v := range values {
		out[i] = ParseAmount(v)
	}
	return out
}

// SumAmounts adds the present amounts using decimal arithmetic.
// The boolean is false when every input was missing.
func SumAmounts(amounts []Amount) (float64, bool) {
	total := decimal.Zero
	found := false
	for _, a := range amounts {
		if !a.Valid {
			continue
		}
		total = total.Add(decimal.NewFromFloat(a.Value))
		found = true
	}
	f, _ := total.Float64()
	return f, found
}
