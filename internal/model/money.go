// Package model defines the core domain models used throughout the engine.
package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used whenever a caller does not specify one.
const DefaultCurrency = "CAD"

// minorUnitExponent is the number of decimal places in one major unit.
const minorUnitExponent = 2

// Money is an exact monetary amount stored in integer minor units (cents).
// Arithmetic never goes through floating point; scaling by a rate is done
// with decimal math and rounded half away from zero to the minor unit.
// Only one currency is supported per computation; binary operations keep
// the receiver's currency.
type Money struct {
	Currency string `json:"currency"`
	Minor    int64  `json:"minor"`
}

// NewMoney creates a Money value from minor units.
func NewMoney(minor int64, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Minor: minor, Currency: currency}
}

// Cents is shorthand for NewMoney in the default currency.
func Cents(minor int64) Money {
	return NewMoney(minor, DefaultCurrency)
}

// Dollars creates a Money value from whole major units in the default currency.
func Dollars(major int64) Money {
	return NewMoney(major*100, DefaultCurrency)
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return NewMoney(0, currency)
}

// MoneyFromDecimal rounds a major-unit decimal amount to the minor unit.
func MoneyFromDecimal(d decimal.Decimal, currency string) Money {
	return NewMoney(d.Shift(minorUnitExponent).Round(0).IntPart(), currency)
}

// MoneyFromFloat converts a major-unit float (as delivered by bank feeds) to Money.
func MoneyFromFloat(f float64, currency string) Money {
	return MoneyFromDecimal(decimal.NewFromFloat(f), currency)
}

// ParseMoney parses a major-unit string such as "1234.56".
func ParseMoney(s, currency string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return MoneyFromDecimal(d, currency), nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Minor, -minorUnitExponent)
}

// Float64 returns the amount in major units. Use only for statistics and
// display, never to feed a result back into Money arithmetic.
func (m Money) Float64() float64 {
	return m.Decimal().InexactFloat64()
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Minor: m.Minor + other.Minor, Currency: m.currency()}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Minor: m.Minor - other.Minor, Currency: m.currency()}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Minor: -m.Minor, Currency: m.currency()}
}

// Abs returns the absolute value of m.
func (m Money) Abs() Money {
	if m.Minor < 0 {
		return m.Neg()
	}
	return m
}

// Scale multiplies m by factor, rounding half away from zero to the minor unit.
func (m Money) Scale(factor decimal.Decimal) Money {
	return MoneyFromDecimal(m.Decimal().Mul(factor), m.currency())
}

// ScaleFloat multiplies m by a float factor such as a percentage.
func (m Money) ScaleFloat(factor float64) Money {
	return m.Scale(decimal.NewFromFloat(factor))
}

// Cmp compares m and other and returns -1, 0 or +1.
func (m Money) Cmp(other Money) int {
	switch {
	case m.Minor < other.Minor:
		return -1
	case m.Minor > other.Minor:
		return 1
	default:
		return 0
	}
}

// LessThan reports whether m < other.
func (m Money) LessThan(other Money) bool { return m.Minor < other.Minor }

// GreaterThan reports whether m > other.
func (m Money) GreaterThan(other Money) bool { return m.Minor > other.Minor }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.Minor == 0 }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.Minor < 0 }

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool { return m.Minor > 0 }

// MinMoney returns the smaller of a and b.
func MinMoney(a, b Money) Money {
	if b.Minor < a.Minor {
		return b
	}
	return a
}

// MaxMoney returns the larger of a and b.
func MaxMoney(a, b Money) Money {
	if b.Minor > a.Minor {
		return b
	}
	return a
}

// SumMoney adds up amounts, returning zero in the default currency for an empty slice.
func SumMoney(amounts ...Money) Money {
	total := Zero(DefaultCurrency)
	for i, a := range amounts {
		if i == 0 {
			total = Zero(a.currency())
		}
		total = total.Add(a)
	}
	return total
}

// String formats the amount as "1234.56 CAD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(minorUnitExponent), m.currency())
}

func (m Money) currency() string {
	if m.Currency == "" {
		return DefaultCurrency
	}
	return m.Currency
}
