/*
Package generic provides the shared primitives of the lending engine.

PURPOSE:
  Money arithmetic, calendar dates and the error taxonomy used by both
  calculation engines (amortization and commission). Nothing in this
  package performs I/O or holds state.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money values are decimal.Decimal, never float64
  - Round2: the single rounding rule (2 places, half away from zero)
  - Percent helpers: rate/100 conversions in one place

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere, so results are identical on
     every platform
  2. Rounding at the point of computation: every monetary field is rounded
     where it is produced, never accumulated unrounded across rows
  3. Purity: every helper returns a new value

USAGE:
  amount := generic.MustParseDecimal("75000")
  fee := generic.Round2(generic.ApplyPercent(amount, generic.MustParseDecimal("2.5")))
  // fee == 1875.00

SEE ALSO:
  - time.go: Date type for due dates and disbursement dates
  - period.go: DateRange for reporting windows
  - errors.go: ErrInvalidArgument, ErrNoApplicableTier
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - decimal helpers
// =============================================================================

// MoneyPlaces is the number of fractional digits kept on monetary fields.
const MoneyPlaces = 2

// PrecisePlaces bounds intermediate precision of rate conversions and
// repeated multiplication.
const PrecisePlaces = 34

var (
	Hundred = decimal.NewFromInt(100)
	One     = decimal.NewFromInt(1)

	// Cent is the smallest representable monetary step.
	Cent = decimal.New(1, -MoneyPlaces)
)

// Round2 rounds to two decimal places, half away from zero.
// decimal.Round implements exactly that rule (RoundBank would not).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// NewMoney builds a decimal from a float literal. Use only for constants and
// tests; parse user input with ParseDecimal.
func NewMoney(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

// ParseDecimal parses a decimal string such as "50000" or "2.5".
func ParseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ArgumentError{Field: "amount", Value: s, Reason: "not a decimal number"}
	}
	return d, nil
}

// MustParseDecimal is ParseDecimal for literals; it panics on bad input.
func MustParseDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ApplyPercent returns amount * percent / 100, unrounded.
func ApplyPercent(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(Hundred)
}

// PercentOf returns 100 * part / whole, unrounded. whole must be non-zero.
func PercentOf(part, whole decimal.Decimal) decimal.Decimal {
	return part.Mul(Hundred).Div(whole)
}

// Pow raises base to a non-negative integer power by square-and-multiply.
// Intermediates are rounded to a fixed precision so long terms stay bounded
// in size and the result does not depend on evaluation order elsewhere.
func Pow(base decimal.Decimal, n int) decimal.Decimal {
	result := One
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(PrecisePlaces)
		}
		base = base.Mul(base).Round(PrecisePlaces)
		n >>= 1
	}
	return result
}

// WithinCents reports whether |a-b| <= cents * 0.01.
func WithinCents(a, b decimal.Decimal, cents int) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Cent.Mul(decimal.NewFromInt(int64(cents))))
}
