// Package core provides money parsing and formatting utilities.
//
// Amounts are whole currency units held in int64. This file converts between
// user-entered strings ("15,000", "₹ 2500") and those units.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// CurrencySymbol prefixes formatted amounts.
const CurrencySymbol = "₹"

// ParseAmount converts a whole-unit amount string to an int64.
//
// It accepts an optional currency symbol and comma thousands separators.
// Signs, fractions and non-digit characters are rejected. Zero is allowed
// because expense amounts and extra payments are non-negative, not positive.
//
// Examples:
//   ParseAmount("15000")    -> 15000, nil
//   ParseAmount("15,000")   -> 15000, nil
//   ParseAmount("₹ 2,500")  -> 2500, nil
//   ParseAmount("-1")       -> 0, ErrInvalidAmount
//   ParseAmount("12.50")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, CurrencySymbol)
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders an amount with the currency symbol and thousands
// separators, e.g. 1234567 -> "₹1,234,567" and -500 -> "-₹500".
func FormatAmount(v int64) string {
	if v < 0 {
		return "-" + CurrencySymbol + humanize.Comma(-v)
	}
	return CurrencySymbol + humanize.Comma(v)
}
