/*
Package amortization computes loan repayments.

PURPOSE:
  Two independent repayment models:

  Annuity (fixed installment):
    payment = P * r * (1+r)^n / ((1+r)^n - 1),  r = annualRate / 100 / 12
    Every period pays the same amount. Interest is charged on the declining
    balance, so early installments are interest-heavy.

  Simple-interest schedule (flat):
    totalInterest = P * rate / 100, charged once over the whole term and
    divided evenly across installments. No compounding. See schedule.go.

ZERO RATE:
  The annuity formula divides by (1+r)^n - 1, which is 0 when r == 0.
  The zero rate is an explicit branch returning principal / n. Monthly
  rates below negligibleRate take the same branch: their interest is far
  below a cent, and (1+r)^n - 1 would lose its significant digits.

LIMITS:
  term_months is capped at MaxTermMonths (50 years).

PRECISION:
  All arithmetic is decimal. (1+r)^n uses generic.Pow, which rounds
  intermediates to a fixed precision, so results are reproducible.

EXAMPLE:
  payment, _ := amortization.InstallmentPayment(
      generic.MustParseDecimal("50000"), generic.MustParseDecimal("15"), 12)
  // payment == 4512.92

SEE ALSO:
  - schedule.go: BuildPaymentSchedule (flat, simple interest)
  - frequency.go: repayment cadence
*/
package amortization

import (
	"github.com/shopspring/decimal"

	"github.com/warp/lending-engine/generic"
)

// MaxTermMonths bounds the annuity term.
const MaxTermMonths = 600

var (
	monthsPerYearPercent = decimal.NewFromInt(1200)
	negligibleRate       = decimal.New(1, -20)
)

// MonthlyRate converts an annual percentage into a monthly fraction.
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.DivRound(monthsPerYearPercent, generic.PrecisePlaces)
}

// InstallmentPayment returns the fixed monthly installment, rounded to cents.
func InstallmentPayment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	raw, err := installmentPayment(principal, annualRatePercent, termMonths)
	if err != nil {
		return decimal.Zero, err
	}
	return generic.Round2(raw), nil
}

// TotalRepayment is the rounded installment times the number of months.
func TotalRepayment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	payment, err := InstallmentPayment(principal, annualRatePercent, termMonths)
	if err != nil {
		return decimal.Zero, err
	}
	return generic.Round2(payment.Mul(decimal.NewFromInt(int64(termMonths)))), nil
}

// TotalInterest is TotalRepayment minus the principal.
func TotalInterest(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	total, err := TotalRepayment(principal, annualRatePercent, termMonths)
	if err != nil {
		return decimal.Zero, err
	}
	return generic.Round2(total.Sub(principal)), nil
}

func installmentPayment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if err := generic.RequireTerm("term_months", termMonths, MaxTermMonths); err != nil {
		return decimal.Zero, err
	}
	if err := generic.RequireNonNegative("principal", principal); err != nil {
		return decimal.Zero, err
	}
	if err := generic.RequireNonNegative("annual_rate", annualRatePercent); err != nil {
		return decimal.Zero, err
	}

	n := decimal.NewFromInt(int64(termMonths))
	r := MonthlyRate(annualRatePercent)
	if r.LessThan(negligibleRate) {
		return principal.Div(n), nil
	}

	growth := generic.Pow(generic.One.Add(r), termMonths)
	if growth.Equal(generic.One) {
		return principal.Div(n), nil
	}
	return principal.Mul(r).Mul(growth).Div(growth.Sub(generic.One)), nil
}

// =============================================================================
// ANNUITY SCHEDULE - Declining-balance breakdown of the fixed installment
// =============================================================================

// AnnuityRow is one month of an annuity schedule.
type AnnuityRow struct {
	Number           int
	DueDate          generic.Date
	Payment          decimal.Decimal
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	RemainingBalance decimal.Decimal
}

// AnnuityResult is the full breakdown plus totals.
type AnnuityResult struct {
	MonthlyPayment decimal.Decimal
	TotalPaid      decimal.Decimal
	TotalInterest  decimal.Decimal
	Rows           []AnnuityRow
}

// AnnuitySchedule splits each fixed installment into interest on the
// outstanding balance and principal. The last row pays whatever balance is
// left, so the schedule always closes at exactly zero; its payment can
// differ from MonthlyPayment by a few cents.
func AnnuitySchedule(principal, annualRatePercent decimal.Decimal, termMonths int, firstPaymentDate generic.Date) (AnnuityResult, error) {
	payment, err := InstallmentPayment(principal, annualRatePercent, termMonths)
	if err != nil {
		return AnnuityResult{}, err
	}

	r := MonthlyRate(annualRatePercent)
	balance := principal
	rows := make([]AnnuityRow, 0, termMonths)
	totalPaid, totalInterest := decimal.Zero, decimal.Zero

	for m := 1; m <= termMonths; m++ {
		interest := generic.Round2(balance.Mul(r))
		principalPart := payment.Sub(interest)
		if m == termMonths || principalPart.GreaterThan(balance) {
			principalPart = balance
		}
		paid := principalPart.Add(interest)
		balance = balance.Sub(principalPart)

		rows = append(rows, AnnuityRow{
			Number:           m,
			DueDate:          firstPaymentDate.AddMonths(m - 1),
			Payment:          paid,
			Principal:        principalPart,
			Interest:         interest,
			RemainingBalance: balance,
		})
		totalPaid = totalPaid.Add(paid)
		totalInterest = totalInterest.Add(interest)
	}

	return AnnuityResult{
		MonthlyPayment: payment,
		TotalPaid:      totalPaid,
		TotalInterest:  totalInterest,
		Rows:           rows,
	}, nil
}
