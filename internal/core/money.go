// Package core provides the expense domain model: money, dates, categories
// and the pure aggregation over them.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmountToCents converts a decimal string to cents with half-up rounding
// on the third decimal place. It is total: every input yields either valid
// positive cents or ErrInvalidAmount. Both dot and comma separators are
// accepted since amounts arrive from forms and JSON as loosely typed strings.
//
// Examples:
//
//	ParseAmountToCents("120")    -> 12000, nil
//	ParseAmountToCents("12.34")  -> 1234, nil
//	ParseAmountToCents("12,34")  -> 1234, nil
//	ParseAmountToCents("12.345") -> 1234, nil (rounds down)
//	ParseAmountToCents("12.346") -> 1235, nil (rounds up)
func ParseAmountToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// CentsFromDecimal converts a wire-format decimal amount (two fraction digits)
// to cents with half-up rounding.
func CentsFromDecimal(amount float64) int64 {
	if amount < 0 {
		return int64(amount*100.0 - 0.5)
	}
	return int64(amount*100.0 + 0.5)
}

// Decimal returns the rupee value as a float64 for the wire format.
// Use cents for calculations to avoid floating-point drift.
func (m Money) Decimal() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}
