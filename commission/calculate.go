package commission

import (
	"github.com/shopspring/decimal"

	"github.com/warp/lending-engine/generic"
)

// =============================================================================
// SPLIT POLICY
// =============================================================================

// SplitPolicy divides a commission between agent and institution.
type SplitPolicy struct {
	AgentPercent       decimal.Decimal
	InstitutionPercent decimal.Decimal
}

// DefaultSplit is the fixed 60/40 revenue split.
var DefaultSplit = SplitPolicy{
	AgentPercent:       decimal.NewFromInt(60),
	InstitutionPercent: decimal.NewFromInt(40),
}

// Split rounds each share independently.
func (p SplitPolicy) Split(commission decimal.Decimal) (agent, institution decimal.Decimal) {
	agent = generic.Round2(generic.ApplyPercent(commission, p.AgentPercent))
	institution = generic.Round2(generic.ApplyPercent(commission, p.InstitutionPercent))
	return agent, institution
}

// =============================================================================
// CALCULATION
// =============================================================================

// Result is the commission breakdown for one loan.
type Result struct {
	LoanAmount       decimal.Decimal
	CommissionRate   decimal.Decimal // percent of the matched tier
	CommissionAmount decimal.Decimal
	NetAmount        decimal.Decimal
	AgentCommission  decimal.Decimal
	InstitutionShare decimal.Decimal
	Tier             RateTier
}

// Calculate computes the commission for loanAmount against table. A nil or
// empty table means DefaultRateTable.
//
//	commission  = round2(tier.FixedAmount ?? amount * rate / 100)
//	agent       = round2(commission * 0.6)
//	institution = round2(commission * 0.4)
//	net         = round2(amount - commission)
func Calculate(loanAmount decimal.Decimal, table RateTable) (Result, error) {
	tier, err := table.orDefault().Find(loanAmount)
	if err != nil {
		return Result{}, err
	}

	commission := generic.Round2(tier.Commission(loanAmount))
	agent, institution := DefaultSplit.Split(commission)

	return Result{
		LoanAmount:       loanAmount,
		CommissionRate:   tier.RatePercent,
		CommissionAmount: commission,
		NetAmount:        generic.Round2(loanAmount.Sub(commission)),
		AgentCommission:  agent,
		InstitutionShare: institution,
		Tier:             tier,
	}, nil
}

// =============================================================================
// PROJECTION
// =============================================================================

// Projection spreads the one-time agent commission over the loan term for
// display. The commission is earned once at origination, so
// TotalProjection is the upfront amount, not MonthlyProjection * term.
type Projection struct {
	UpfrontCommission decimal.Decimal
	MonthlyProjection decimal.Decimal
	TotalProjection   decimal.Decimal
}

// Project computes the agent's commission once and amortizes it per month.
func Project(loanAmount decimal.Decimal, termMonths int, table RateTable) (Projection, error) {
	if err := generic.RequirePositive("term_months", termMonths); err != nil {
		return Projection{}, err
	}

	result, err := Calculate(loanAmount, table)
	if err != nil {
		return Projection{}, err
	}

	return Projection{
		UpfrontCommission: result.AgentCommission,
		MonthlyProjection: generic.Round2(result.AgentCommission.Div(decimal.NewFromInt(int64(termMonths)))),
		TotalProjection:   result.AgentCommission,
	}, nil
}
