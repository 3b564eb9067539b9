package generic_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/lending-engine/generic"
)

func TestRound2_HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"2.675", "2.68"},
		{"-1.005", "-1.01"},
		{"-2.675", "-2.68"},
		{"4791.666666", "4791.67"},
		{"0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := generic.Round2(generic.MustParseDecimal(tt.in))
			assert.True(t, got.Equal(generic.MustParseDecimal(tt.want)), "got %s", got)
		})
	}
}

func TestPow_MatchesRepeatedMultiplication(t *testing.T) {
	base := generic.MustParseDecimal("1.0125")
	want := generic.One
	for i := 0; i < 12; i++ {
		want = want.Mul(base)
	}

	got := generic.Pow(base, 12)
	assert.True(t, got.Equal(want), "got %s want %s", got, want)
	assert.True(t, generic.Pow(base, 0).Equal(generic.One))
}

func TestApplyPercentAndPercentOf(t *testing.T) {
	fee := generic.ApplyPercent(decimal.NewFromInt(75000), generic.MustParseDecimal("2.5"))
	assert.True(t, fee.Equal(decimal.NewFromInt(1875)))

	rate := generic.PercentOf(decimal.NewFromInt(1875), decimal.NewFromInt(75000))
	assert.True(t, rate.Equal(generic.MustParseDecimal("2.5")))
}

func TestParseDecimal_Invalid(t *testing.T) {
	_, err := generic.ParseDecimal("12,50")
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)

	v, err := generic.ParseDecimal("12.50")
	require.NoError(t, err)
	assert.Equal(t, "12.5", v.String())
}

func TestMustParseDecimal_PanicsOnBadLiteral(t *testing.T) {
	assert.Panics(t, func() { generic.MustParseDecimal("12,50") })
	assert.True(t, generic.MustParseDecimal("12.50").Equal(generic.NewMoney(12.5)))
}

func TestRequireTerm(t *testing.T) {
	assert.NoError(t, generic.RequireTerm("term_months", 600, 600))
	assert.ErrorIs(t, generic.RequireTerm("term_months", 0, 600), generic.ErrInvalidArgument)
	assert.ErrorIs(t, generic.RequireTerm("term_months", 601, 600), generic.ErrInvalidArgument)
}

func TestWithinCents(t *testing.T) {
	a := generic.MustParseDecimal("100.00")
	assert.True(t, generic.WithinCents(a, generic.MustParseDecimal("100.03"), 3))
	assert.False(t, generic.WithinCents(a, generic.MustParseDecimal("100.04"), 3))
}

// =============================================================================
// DATES
// =============================================================================

func TestDate_AddDaysAcrossLeapYear(t *testing.T) {
	start := generic.NewDate(2024, time.January, 1)
	assert.Equal(t, "2024-11-26", start.AddDays(330).String())
	assert.Equal(t, "2024-03-01", generic.NewDate(2024, time.February, 28).AddDays(2).String())
	assert.Equal(t, 366, generic.DaysBetween(start, generic.NewDate(2025, time.January, 1)))
}

func TestDate_AddMonthsClampsToMonthEnd(t *testing.T) {
	jan31 := generic.NewDate(2024, time.January, 31)
	assert.Equal(t, "2024-02-29", jan31.AddMonths(1).String())
	assert.Equal(t, "2024-04-30", jan31.AddMonths(3).String())
	assert.Equal(t, "2025-01-31", jan31.AddMonths(12).String())
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	got := generic.DateOf(time.Date(2025, time.June, 10, 23, 59, 0, 0, loc))
	assert.Equal(t, generic.NewDate(2025, time.June, 10), got)
}

func TestParseDate(t *testing.T) {
	got, err := generic.ParseDate("2025-03-15")
	require.NoError(t, err)
	assert.Equal(t, generic.NewDate(2025, time.March, 15), got)

	_, err = generic.ParseDate("15/03/2025")
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)
}

func TestDateRange_InclusiveBounds(t *testing.T) {
	r, err := generic.NewDateRange(generic.NewDate(2025, time.March, 1), generic.NewDate(2025, time.March, 31))
	require.NoError(t, err)

	assert.True(t, r.Contains(generic.NewDate(2025, time.March, 1)))
	assert.True(t, r.Contains(generic.NewDate(2025, time.March, 31)))
	assert.False(t, r.Contains(generic.NewDate(2025, time.February, 28)))
	assert.False(t, r.Contains(generic.NewDate(2025, time.April, 1)))
	assert.Equal(t, 31, r.Days())

	_, err = generic.NewDateRange(generic.NewDate(2025, time.April, 1), generic.NewDate(2025, time.March, 1))
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)
}

func TestMonthRange(t *testing.T) {
	r := generic.MonthRange(generic.NewDate(2024, time.February, 17))
	assert.Equal(t, "[2024-02-01, 2024-02-29]", r.String())
}

// =============================================================================
// ERRORS
// =============================================================================

func TestErrorClassification(t *testing.T) {
	argErr := generic.RequirePositive("term_months", 0)
	require.Error(t, argErr)
	assert.True(t, generic.IsClientError(argErr))
	assert.Contains(t, argErr.Error(), "term_months")

	tierErr := &generic.NoTierError{Amount: decimal.NewFromInt(-1)}
	assert.True(t, errors.Is(tierErr, generic.ErrNoApplicableTier))
	assert.True(t, generic.IsClientError(tierErr))

	assert.True(t, generic.IsNotFound(errors.Join(generic.ErrNotFound)))
	assert.False(t, generic.IsClientError(generic.ErrNotFound))

	assert.NoError(t, generic.RequireNonNegative("principal", decimal.Zero))
}
