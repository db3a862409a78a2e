// Package core provides money parsing and handling utilities.
//
// This file contains the integer minor-unit Money type and the conversion
// from user entered amounts to cents.
package core

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Money is an amount in cents. Arithmetic never goes through floating point.
type Money struct {
	Cents int64
}

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(1<<62 - 1)
)

// Cents builds a Money from a cent count.
func Cents(c int64) Money { return Money{Cents: c} }

// Add returns m + o.
func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
// Sub returns m - o.
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
// Mul returns m * n.
func (m Money) Mul(n int64) Money { return Money{Cents: m.Cents * n} }
func (m Money) Neg() Money        { return Money{Cents: -m.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }

// Div divides truncating toward zero. The remainder is dropped.
func (m Money) Div(n int64) Money {
	if n == 0 {
		return Money{}
	}
	return Money{Cents: m.Cents / n}
}

// Sign returns -1, 0 or 1.
func (m Money) Sign() int {
	switch {
	case m.Cents > 0:
		return 1
	case m.Cents < 0:
		return -1
	default:
		return 0
	}
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return m.Neg()
	}
	return m
}

// Validate rejects amounts that are not strictly positive.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in major units, e.g. 1234 cents => 12.34.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Format renders the amount with thousands grouping, e.g. "$1,234.50" or "-$3.00".
func (m Money) Format() string {
	sign := ""
	c := m.Cents
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(c/100), c%100)
}

// String implements fmt.Stringer.
func (m Money) String() string { return m.Format() }

// Input renders the amount the way an edit form expects it back, e.g. "1234.50".
func (m Money) Input() string {
	if m.Cents == 0 {
		return ""
	}
	return m.Decimal().StringFixed(2)
}

// ParseAmount converts a user entered amount to cents with half-up rounding.
//
// Currency symbols, blanks and thousands separators are ignored; the dot is
// the decimal separator. The result must be strictly positive.
//
// Examples:
//
//	ParseAmount("12.34")     -> 1234
//	ParseAmount("$1,234.5")  -> 123450
//	ParseAmount("12.345")    -> 1235
func ParseAmount(s string) (Money, error) {
	s = strings.NewReplacer("$", "", ",", "", " ", "", " ", "").Replace(strings.TrimSpace(s))
	if s == "" || strings.HasPrefix(s, "+") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if !cents.IsPositive() || cents.GreaterThan(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}
