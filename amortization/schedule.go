package amortization

import (
	"github.com/shopspring/decimal"

	"github.com/warp/lending-engine/generic"
)

// MaxTermDays bounds the simple-interest term (50 years).
const MaxTermDays = 18_300

// =============================================================================
// LOAN TERMS
// =============================================================================

// LoanTerms groups the inputs of both repayment models. TermMonths feeds
// the annuity formula, TermDays feeds the simple-interest schedule.
type LoanTerms struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TermMonths        int
	TermDays          int
	Frequency         Frequency
}

// Validate checks the invariants shared by both models. A term of zero is
// accepted for whichever model is not in use.
func (t LoanTerms) Validate() error {
	if err := generic.RequireNonNegative("principal", t.Principal); err != nil {
		return err
	}
	if err := generic.RequireNonNegative("interest_rate", t.AnnualRatePercent); err != nil {
		return err
	}
	if t.TermMonths < 1 && t.TermDays < 1 {
		return &generic.ArgumentError{Field: "term", Value: "0", Reason: "term_months or term_days must be positive"}
	}
	return nil
}

// =============================================================================
// SCHEDULE
// =============================================================================

// Installment is one row of a simple-interest schedule.
// Total is round2(principalPer + interestPer), computed before rounding the
// parts, so it can differ from Principal + Interest by a cent.
type Installment struct {
	Number    int
	DueDate   generic.Date
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Total     decimal.Decimal
}

type Schedule struct {
	Installments []Installment
	IntervalDays int
}

func (s Schedule) Len() int { return len(s.Installments) }

func (s Schedule) TotalPrincipal() decimal.Decimal {
	return s.sum(func(i Installment) decimal.Decimal { return i.Principal })
}

func (s Schedule) TotalInterest() decimal.Decimal {
	return s.sum(func(i Installment) decimal.Decimal { return i.Interest })
}

func (s Schedule) TotalAmount() decimal.Decimal {
	return s.sum(func(i Installment) decimal.Decimal { return i.Total })
}

// LastDueDate returns the zero Date for an empty schedule.
func (s Schedule) LastDueDate() generic.Date {
	if len(s.Installments) == 0 {
		return generic.Date{}
	}
	return s.Installments[len(s.Installments)-1].DueDate
}

func (s Schedule) sum(field func(Installment) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range s.Installments {
		total = total.Add(field(inst))
	}
	return total
}

// BuildPaymentSchedule builds an equal-installment, simple-interest schedule.
//
// Total interest is principal * rate / 100 over the whole term (not
// annualized per period). Principal and interest are split evenly across
// the installments given by freq.Plan(termDays). Due dates start at
// firstPaymentDate and advance by the interval in calendar days.
//
// Each row rounds its own fields, so the principal column may sum to the
// loan principal plus or minus one cent per installment.
func BuildPaymentSchedule(principal, interestRatePercent decimal.Decimal, termDays int, freq Frequency, firstPaymentDate generic.Date) (Schedule, error) {
	if err := generic.RequireTerm("term_days", termDays, MaxTermDays); err != nil {
		return Schedule{}, err
	}
	if err := generic.RequireNonNegative("principal", principal); err != nil {
		return Schedule{}, err
	}
	if err := generic.RequireNonNegative("interest_rate", interestRatePercent); err != nil {
		return Schedule{}, err
	}

	count, interval := freq.Plan(termDays)
	n := decimal.NewFromInt(int64(count))

	totalInterest := generic.ApplyPercent(principal, interestRatePercent)
	principalPer := principal.Div(n)
	interestPer := totalInterest.Div(n)

	rowPrincipal := generic.Round2(principalPer)
	rowInterest := generic.Round2(interestPer)
	rowTotal := generic.Round2(principalPer.Add(interestPer))

	installments := make([]Installment, count)
	for i := range installments {
		installments[i] = Installment{
			Number:    i + 1,
			DueDate:   firstPaymentDate.AddDays(interval * i),
			Principal: rowPrincipal,
			Interest:  rowInterest,
			Total:     rowTotal,
		}
	}

	return Schedule{Installments: installments, IntervalDays: interval}, nil
}

// BuildFromTerms is BuildPaymentSchedule over a LoanTerms value.
func BuildFromTerms(t LoanTerms, firstPaymentDate generic.Date) (Schedule, error) {
	return BuildPaymentSchedule(t.Principal, t.AnnualRatePercent, t.TermDays, t.Frequency, firstPaymentDate)
}
