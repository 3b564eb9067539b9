/*
Package commission computes origination commissions.

PURPOSE:
  Maps a loan amount to a commission tier, computes the commission and
  splits it between the originating agent and the institution. Also
  projects the agent's share over a loan term and aggregates stored
  commissions over a reporting window.

RATE TABLE:
  A RateTable is data: an ordered slice of [Min, Max] ranges searched
  linearly. The first tier containing the amount wins, so a boundary
  shared by two adjacent tiers belongs to the lower one.

  Default table:
    [0, 50000]        3.0%
    (50000, 100000]   2.5%
    (100000, 200000]  2.0%
    (200000, 500000]  1.5%
    (500000, ∞)       1.0%

SPLIT POLICY:
  60% agent, 40% institution. Each share is rounded on its own, so the
  two can miss the commission by one cent.

SEE ALSO:
  - calculate.go: Calculate, Project
  - aggregate.go: AggregateAgentCommissions
  - factory/ratetable.go: JSON rate tables
*/
package commission

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/lending-engine/generic"
)

// =============================================================================
// RATE TIER
// =============================================================================

// RateTier maps an inclusive amount range to a percentage or a fixed fee.
type RateTier struct {
	Min         decimal.Decimal
	Max         *decimal.Decimal // nil = unbounded
	RatePercent decimal.Decimal
	FixedAmount *decimal.Decimal // overrides RatePercent when set
}

// Contains reports Min <= amount <= Max.
func (t RateTier) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(t.Min) {
		return false
	}
	return t.Max == nil || amount.LessThanOrEqual(*t.Max)
}

func (t RateTier) Unbounded() bool { return t.Max == nil }

// Commission returns the unrounded commission for an amount in this tier.
func (t RateTier) Commission(amount decimal.Decimal) decimal.Decimal {
	if t.FixedAmount != nil {
		return *t.FixedAmount
	}
	return generic.ApplyPercent(amount, t.RatePercent)
}

func (t RateTier) String() string {
	upper := "∞"
	if t.Max != nil {
		upper = t.Max.String()
	}
	if t.FixedAmount != nil {
		return fmt.Sprintf("[%s, %s] fixed %s", t.Min, upper, t.FixedAmount)
	}
	return fmt.Sprintf("[%s, %s] %s%%", t.Min, upper, t.RatePercent)
}

// Bound is a helper for building tiers inline.
func Bound(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// =============================================================================
// RATE TABLE
// =============================================================================

type RateTable []RateTier

// DefaultRateTable returns a fresh copy of the five-tier table, so callers
// can never mutate a shared instance.
func DefaultRateTable() RateTable {
	return RateTable{
		{Min: decimal.Zero, Max: Bound(50_000), RatePercent: generic.MustParseDecimal("3.0")},
		{Min: decimal.NewFromInt(50_000), Max: Bound(100_000), RatePercent: generic.MustParseDecimal("2.5")},
		{Min: decimal.NewFromInt(100_000), Max: Bound(200_000), RatePercent: generic.MustParseDecimal("2.0")},
		{Min: decimal.NewFromInt(200_000), Max: Bound(500_000), RatePercent: generic.MustParseDecimal("1.5")},
		{Min: decimal.NewFromInt(500_000), Max: nil, RatePercent: generic.MustParseDecimal("1.0")},
	}
}

// orDefault substitutes the default table for a nil or empty one.
func (rt RateTable) orDefault() RateTable {
	if len(rt) == 0 {
		return DefaultRateTable()
	}
	return rt
}

// Find returns the first tier containing amount.
func (rt RateTable) Find(amount decimal.Decimal) (RateTier, error) {
	for _, tier := range rt {
		if tier.Contains(amount) {
			return tier, nil
		}
	}
	return RateTier{}, &generic.NoTierError{Amount: amount}
}

// Validate checks the table's structure:
//   - at least one tier
//   - no negative bounds or rates, Max >= Min
//   - ascending order, adjacent tiers may share a boundary but not overlap
//   - only the last tier may be unbounded
//
// Gaps between tiers are allowed; amounts in a gap fail at Calculate time
// with ErrNoApplicableTier.
func (rt RateTable) Validate() error {
	if len(rt) == 0 {
		return &generic.ArgumentError{Field: "rate_table", Value: "[]", Reason: "needs at least one tier"}
	}

	for i, tier := range rt {
		field := fmt.Sprintf("tiers[%d]", i)
		if tier.Min.IsNegative() {
			return &generic.ArgumentError{Field: field + ".min", Value: tier.Min.String(), Reason: "must not be negative"}
		}
		if tier.RatePercent.IsNegative() {
			return &generic.ArgumentError{Field: field + ".rate", Value: tier.RatePercent.String(), Reason: "must not be negative"}
		}
		if tier.FixedAmount != nil && tier.FixedAmount.IsNegative() {
			return &generic.ArgumentError{Field: field + ".fixed_amount", Value: tier.FixedAmount.String(), Reason: "must not be negative"}
		}
		if tier.Max != nil && tier.Max.LessThan(tier.Min) {
			return &generic.ArgumentError{Field: field + ".max", Value: tier.Max.String(), Reason: "below min " + tier.Min.String()}
		}
		if i == 0 {
			continue
		}

		prev := rt[i-1]
		if prev.Max == nil {
			return &generic.ArgumentError{Field: fmt.Sprintf("tiers[%d].max", i-1), Value: "null", Reason: "only the last tier may be unbounded"}
		}
		if tier.Min.LessThan(*prev.Max) {
			return &generic.ArgumentError{Field: field + ".min", Value: tier.Min.String(), Reason: "overlaps previous tier ending at " + prev.Max.String()}
		}
	}
	return nil
}

// Covers reports whether the table has no gaps from 0 to infinity, in which
// case every non-negative amount matches exactly one tier.
func (rt RateTable) Covers() bool {
	if len(rt) == 0 || !rt[0].Min.IsZero() || rt[len(rt)-1].Max != nil {
		return false
	}
	for i := 1; i < len(rt); i++ {
		if rt[i-1].Max == nil || !rt[i].Min.Equal(*rt[i-1].Max) {
			return false
		}
	}
	return true
}
