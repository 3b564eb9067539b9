package amortization_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/lending-engine/amortization"
	"github.com/warp/lending-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(s string) decimal.Decimal {
	return generic.MustParseDecimal(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func jan1() generic.Date {
	return generic.NewDate(2024, time.January, 1)
}

// =============================================================================
// ANNUITY FORMULA
// =============================================================================

func TestInstallmentPayment_ClosedForm(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		months    int
		want      string
	}{
		{"50k at 15% for 12 months", "50000", "15", 12, "4512.92"},
		{"10k at 12% for 36 months", "10000", "12", 36, "332.14"},
		{"10k at 12% for 12 months", "10000", "12", 12, "888.49"},
		{"1k at 6% for 6 months", "1000", "6", 6, "169.60"},
		{"single month repays principal plus one month interest", "1000", "12", 1, "1010.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := amortization.InstallmentPayment(d(tt.principal), d(tt.rate), tt.months)
			require.NoError(t, err)
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestInstallmentPayment_ZeroRate_DividesPrincipalEvenly(t *testing.T) {
	// GIVEN: A zero rate, which would make the annuity denominator zero
	// WHEN: Computing the installment
	// THEN: The result is round2(principal / term), not an error

	got, err := amortization.InstallmentPayment(d("12000"), decimal.Zero, 12)
	require.NoError(t, err)
	assertDecimal(t, "1000", got)

	got, err = amortization.InstallmentPayment(d("100000"), decimal.Zero, 3)
	require.NoError(t, err)
	assertDecimal(t, "33333.33", got)
}

func TestInstallmentPayment_TinyRateFallsBackToEvenSplit(t *testing.T) {
	// GIVEN: Positive rates so small the monthly growth factor is ~1
	// WHEN: Computing the installment and the annuity schedule
	// THEN: Both return principal / term instead of dividing by zero

	for _, rate := range []string{"0.00000000000001", "0.000000000000000001", "1e-40"} {
		got, err := amortization.InstallmentPayment(d("50000"), d(rate), 12)
		require.NoError(t, err, "rate %s", rate)
		assertDecimal(t, "4166.67", got)

		res, err := amortization.AnnuitySchedule(d("50000"), d(rate), 12, jan1())
		require.NoError(t, err, "rate %s", rate)
		assert.True(t, res.Rows[11].RemainingBalance.IsZero(), "rate %s", rate)
		assert.True(t, res.TotalInterest.IsZero(), "rate %s", rate)
	}
}

func TestInstallmentPayment_TermCap(t *testing.T) {
	_, err := amortization.InstallmentPayment(d("1000"), d("10"), amortization.MaxTermMonths)
	require.NoError(t, err)

	_, err = amortization.InstallmentPayment(d("1000"), d("10"), amortization.MaxTermMonths+1)
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)

	_, err = amortization.AnnuitySchedule(d("1000"), d("10"), math.MaxInt, jan1())
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)
}

func TestInstallmentPayment_InvalidArguments(t *testing.T) {
	cases := []struct {
		name      string
		principal string
		rate      string
		months    int
	}{
		{"zero term", "1000", "10", 0},
		{"negative term", "1000", "10", -3},
		{"negative principal", "-1", "10", 12},
		{"negative rate", "1000", "-0.5", 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := amortization.InstallmentPayment(d(tc.principal), d(tc.rate), tc.months)
			require.Error(t, err)
			assert.True(t, errors.Is(err, generic.ErrInvalidArgument))

			var argErr *generic.ArgumentError
			assert.ErrorAs(t, err, &argErr)
		})
	}
}

func TestInstallmentPayment_NonNegativeAndDeterministic(t *testing.T) {
	for _, rate := range []string{"0", "0.5", "7.25", "36", "120"} {
		for _, months := range []int{1, 6, 12, 60, 360, 600} {
			first, err := amortization.InstallmentPayment(d("250000"), d(rate), months)
			require.NoError(t, err)
			second, err := amortization.InstallmentPayment(d("250000"), d(rate), months)
			require.NoError(t, err)

			assert.False(t, first.IsNegative(), "rate %s months %d", rate, months)
			assert.True(t, first.Equal(second), "rate %s months %d", rate, months)
			assert.True(t, first.Equal(first.Round(2)), "rate %s months %d not rounded", rate, months)
		}
	}
}

func TestTotalRepayment_IsRoundedPaymentTimesTerm(t *testing.T) {
	total, err := amortization.TotalRepayment(d("50000"), d("15"), 12)
	require.NoError(t, err)
	assertDecimal(t, "54155.04", total)

	interest, err := amortization.TotalInterest(d("50000"), d("15"), 12)
	require.NoError(t, err)
	assertDecimal(t, "4155.04", interest)

	_, err = amortization.TotalRepayment(d("50000"), d("15"), 0)
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)
}

// =============================================================================
// ANNUITY SCHEDULE
// =============================================================================

func TestAnnuitySchedule_ClosesAtZero(t *testing.T) {
	// GIVEN: 10,000 at 12% over 12 months (payment 888.49)
	// WHEN: Building the declining-balance schedule
	// THEN: Principal sums to exactly 10,000 and the last row absorbs the residue

	result, err := amortization.AnnuitySchedule(d("10000"), d("12"), 12, jan1())
	require.NoError(t, err)
	require.Len(t, result.Rows, 12)

	assertDecimal(t, "888.49", result.MonthlyPayment)

	first := result.Rows[0]
	assertDecimal(t, "100", first.Interest)
	assertDecimal(t, "788.49", first.Principal)
	assertDecimal(t, "9211.51", first.RemainingBalance)
	assert.Equal(t, jan1(), first.DueDate)

	last := result.Rows[11]
	assert.Equal(t, 12, last.Number)
	assert.True(t, last.RemainingBalance.IsZero())
	assertDecimal(t, "888.47", last.Payment)
	assert.Equal(t, generic.NewDate(2024, time.December, 1), last.DueDate)

	principal := decimal.Zero
	for _, row := range result.Rows {
		principal = principal.Add(row.Principal)
	}
	assertDecimal(t, "10000", principal)
	assertDecimal(t, "661.86", result.TotalInterest)
	assertDecimal(t, "10661.86", result.TotalPaid)
}

func TestAnnuitySchedule_ZeroRate(t *testing.T) {
	result, err := amortization.AnnuitySchedule(d("1200"), decimal.Zero, 12, jan1())
	require.NoError(t, err)

	for _, row := range result.Rows {
		assert.True(t, row.Interest.IsZero())
		assertDecimal(t, "100", row.Principal)
	}
	assert.True(t, result.Rows[11].RemainingBalance.IsZero())
}

func TestAnnuitySchedule_MonthEndDueDatesClamp(t *testing.T) {
	result, err := amortization.AnnuitySchedule(d("3000"), d("5"), 3, generic.NewDate(2025, time.January, 31))
	require.NoError(t, err)

	assert.Equal(t, "2025-01-31", result.Rows[0].DueDate.String())
	assert.Equal(t, "2025-02-28", result.Rows[1].DueDate.String())
	assert.Equal(t, "2025-03-31", result.Rows[2].DueDate.String())
}

// =============================================================================
// SIMPLE-INTEREST SCHEDULE
// =============================================================================

func TestBuildPaymentSchedule_MonthlyScenario(t *testing.T) {
	// GIVEN: 50,000 at 15% flat over 360 days, monthly, first payment 2024-01-01
	// WHEN: Building the schedule
	// THEN: 12 installments of round2(50000/12 + 7500/12) = 4791.67, 30 days apart

	schedule, err := amortization.BuildPaymentSchedule(d("50000"), d("15"), 360, amortization.Monthly, jan1())
	require.NoError(t, err)
	require.Equal(t, 12, schedule.Len())
	assert.Equal(t, 30, schedule.IntervalDays)

	for i, inst := range schedule.Installments {
		assert.Equal(t, i+1, inst.Number)
		assertDecimal(t, "4166.67", inst.Principal)
		assertDecimal(t, "625", inst.Interest)
		assertDecimal(t, "4791.67", inst.Total)
	}

	assert.Equal(t, "2024-01-01", schedule.Installments[0].DueDate.String())
	// 11 steps of 30 days across the 2024 leap day
	assert.Equal(t, "2024-11-26", schedule.LastDueDate().String())
}

func TestBuildPaymentSchedule_InstallmentCounts(t *testing.T) {
	tests := []struct {
		freq         amortization.Frequency
		termDays     int
		wantCount    int
		wantInterval int
	}{
		{amortization.Daily, 10, 10, 1},
		{amortization.Daily, 1, 1, 1},
		{amortization.Weekly, 30, 5, 7},
		{amortization.Weekly, 28, 4, 7},
		{amortization.Biweekly, 30, 3, 14},
		{amortization.Biweekly, 14, 1, 14},
		{amortization.Monthly, 31, 2, 30},
		{amortization.Monthly, 1, 1, 30},
		{amortization.Frequency("quarterly"), 90, 3, 30},
		{amortization.Frequency(""), 45, 2, 30},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			schedule, err := amortization.BuildPaymentSchedule(d("1000"), d("10"), tt.termDays, tt.freq, jan1())
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, schedule.Len())
			assert.Equal(t, tt.wantInterval, schedule.IntervalDays)
		})
	}
}

func TestBuildPaymentSchedule_StrictlyIncreasing(t *testing.T) {
	for _, freq := range amortization.Frequencies {
		schedule, err := amortization.BuildPaymentSchedule(d("987654.32"), d("18.5"), 365, freq, jan1())
		require.NoError(t, err)

		for i := 1; i < schedule.Len(); i++ {
			prev, cur := schedule.Installments[i-1], schedule.Installments[i]
			assert.Equal(t, prev.Number+1, cur.Number)
			assert.True(t, cur.DueDate.After(prev.DueDate), "%s row %d", freq, i)
			assert.Equal(t, freq.IntervalDays(), generic.DaysBetween(prev.DueDate, cur.DueDate))
		}
	}
}

func TestBuildPaymentSchedule_PrincipalWithinRoundingTolerance(t *testing.T) {
	// GIVEN: Amounts that do not divide evenly
	// THEN: The principal column is within one cent per installment of the loan

	for _, principal := range []string{"100000", "99999.99", "12345.67", "1", "0.05"} {
		for _, freq := range amortization.Frequencies {
			schedule, err := amortization.BuildPaymentSchedule(d(principal), d("10"), 90, freq, jan1())
			require.NoError(t, err)
			assert.True(t,
				generic.WithinCents(schedule.TotalPrincipal(), d(principal), schedule.Len()),
				"%s %s: sum %s", principal, freq, schedule.TotalPrincipal())
		}
	}
}

func TestBuildPaymentSchedule_TotalRoundedFromUnroundedParts(t *testing.T) {
	// GIVEN: 100,000 at 10% over 90 days monthly (3 installments)
	// THEN: principal 33333.33 + interest 3333.33 = 36666.66, but the total is
	//       round2(33333.333… + 3333.333…) = 36666.67

	schedule, err := amortization.BuildPaymentSchedule(d("100000"), d("10"), 90, amortization.Monthly, jan1())
	require.NoError(t, err)
	require.Equal(t, 3, schedule.Len())

	inst := schedule.Installments[0]
	assertDecimal(t, "33333.33", inst.Principal)
	assertDecimal(t, "3333.33", inst.Interest)
	assertDecimal(t, "36666.67", inst.Total)
	assertDecimal(t, "99999.99", schedule.TotalPrincipal())
}

func TestBuildPaymentSchedule_ZeroRateAndZeroPrincipal(t *testing.T) {
	schedule, err := amortization.BuildPaymentSchedule(d("700"), decimal.Zero, 7, amortization.Daily, jan1())
	require.NoError(t, err)
	for _, inst := range schedule.Installments {
		assertDecimal(t, "100", inst.Principal)
		assert.True(t, inst.Interest.IsZero())
	}

	schedule, err = amortization.BuildPaymentSchedule(decimal.Zero, d("10"), 30, amortization.Weekly, jan1())
	require.NoError(t, err)
	assert.True(t, schedule.TotalAmount().IsZero())
}

func TestBuildPaymentSchedule_InvalidTerm(t *testing.T) {
	for _, days := range []int{0, -1, -30} {
		_, err := amortization.BuildPaymentSchedule(d("1000"), d("10"), days, amortization.Monthly, jan1())
		assert.ErrorIs(t, err, generic.ErrInvalidArgument, "term %d", days)
	}

	_, err := amortization.BuildPaymentSchedule(d("-5"), d("10"), 30, amortization.Monthly, jan1())
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)
}

func TestBuildPaymentSchedule_TermCap(t *testing.T) {
	// GIVEN: Terms past the 50-year cap, up to the largest int
	// WHEN: Building a schedule
	// THEN: An argument error, never an allocation of the full term

	for _, days := range []int{amortization.MaxTermDays + 1, 2_000_000_000, math.MaxInt} {
		for _, freq := range amortization.Frequencies {
			_, err := amortization.BuildPaymentSchedule(d("1000"), d("10"), days, freq, jan1())
			assert.ErrorIs(t, err, generic.ErrInvalidArgument, "term %d %s", days, freq)
		}
	}

	schedule, err := amortization.BuildPaymentSchedule(d("1000"), d("10"), amortization.MaxTermDays, amortization.Monthly, jan1())
	require.NoError(t, err)
	assert.Equal(t, 610, schedule.Len())
}

func TestBuildFromTerms(t *testing.T) {
	terms := amortization.LoanTerms{
		Principal:         d("2800"),
		AnnualRatePercent: d("5"),
		TermDays:          28,
		Frequency:         amortization.Weekly,
	}
	require.NoError(t, terms.Validate())

	schedule, err := amortization.BuildFromTerms(terms, jan1())
	require.NoError(t, err)
	assert.Equal(t, 4, schedule.Len())
	assertDecimal(t, "735", schedule.Installments[0].Total)
	assertDecimal(t, "2940", schedule.TotalAmount())
	assertDecimal(t, "140", schedule.TotalInterest())
}

func TestLoanTerms_Validate(t *testing.T) {
	assert.ErrorIs(t, amortization.LoanTerms{Principal: d("1")}.Validate(), generic.ErrInvalidArgument)
	assert.ErrorIs(t, amortization.LoanTerms{Principal: d("-1"), TermMonths: 1}.Validate(), generic.ErrInvalidArgument)
	assert.NoError(t, amortization.LoanTerms{Principal: d("1"), TermMonths: 1}.Validate())
}

// =============================================================================
// FREQUENCY
// =============================================================================

func TestFrequencyPlan_NoOverflow(t *testing.T) {
	count, interval := amortization.Weekly.Plan(math.MaxInt)
	assert.Equal(t, 7, interval)
	assert.Equal(t, math.MaxInt/7, count)

	count, _ = amortization.Weekly.Plan(math.MaxInt - 1)
	assert.Equal(t, math.MaxInt/7, count)

	count, _ = amortization.Monthly.Plan(90)
	assert.Equal(t, 3, count)
	count, _ = amortization.Biweekly.Plan(15)
	assert.Equal(t, 2, count)
}

func TestParseFrequency(t *testing.T) {
	f, err := amortization.ParseFrequency(" Weekly ")
	require.NoError(t, err)
	assert.Equal(t, amortization.Weekly, f)

	_, err = amortization.ParseFrequency("quarterly")
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)
}
