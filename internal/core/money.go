// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. Parsing goes through shopspring/decimal
// so that user input is never routed through floating point.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a user-entered decimal string to Money.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// Signs, exponents, zero, and more than two fractional digits are rejected
// rather than rounded.
//
// Examples:
//
//	ParseAmount("12.34") -> 1234 cents
//	ParseAmount("12,3")  -> 1230 cents
//	ParseAmount("12.345") -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "+-eE") {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if !d.IsPositive() {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	cents := d.Mul(hundred)
	if !cents.IsInteger() || cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	return Money{Cents: cents.IntPart()}, nil
}

// maxCents keeps sums of a month's rows far from int64 overflow.
const maxCents = 1 << 53

// Decimal returns the amount as a decimal with two fractional digits.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with two fractional digits, e.g. "12.34".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
