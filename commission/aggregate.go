package commission

import (
	"github.com/shopspring/decimal"

	"github.com/warp/lending-engine/generic"
)

// DisbursedLoan is the slice of a loan record the aggregator reads.
// CommissionAmount is whatever was stored at origination; it is trusted,
// never recomputed from a rate table.
type DisbursedLoan struct {
	ID               string
	AgentID          string
	Amount           decimal.Decimal
	CommissionAmount decimal.Decimal
	DisbursedAt      *generic.Date // nil = not disbursed yet
}

// AgentSummary aggregates an agent's disbursed loans over a date range.
type AgentSummary struct {
	TotalLoans            int
	TotalLoanAmount       decimal.Decimal
	TotalCommission       decimal.Decimal
	AverageCommissionRate decimal.Decimal // percent; 0 when TotalLoanAmount is 0
}

// AggregateAgentCommissions sums loans disbursed within [start, end].
// Loans without a disbursement date are skipped. Callers pass one agent's
// loans; the function does not filter by agent.
func AggregateAgentCommissions(loans []DisbursedLoan, start, end generic.Date) (AgentSummary, error) {
	window, err := generic.NewDateRange(start, end)
	if err != nil {
		return AgentSummary{}, err
	}

	summary := AgentSummary{
		TotalLoanAmount:       decimal.Zero,
		TotalCommission:       decimal.Zero,
		AverageCommissionRate: decimal.Zero,
	}

	for _, loan := range loans {
		if loan.DisbursedAt == nil || !window.Contains(*loan.DisbursedAt) {
			continue
		}
		summary.TotalLoans++
		summary.TotalLoanAmount = summary.TotalLoanAmount.Add(loan.Amount)
		summary.TotalCommission = summary.TotalCommission.Add(loan.CommissionAmount)
	}

	// Zero-amount loans still count; only the average is undefined.
	if !summary.TotalLoanAmount.IsZero() {
		summary.AverageCommissionRate = generic.Round2(generic.PercentOf(summary.TotalCommission, summary.TotalLoanAmount))
	}
	return summary, nil
}

// FilterByAgent returns the loans originated by agentID.
func FilterByAgent(loans []DisbursedLoan, agentID string) []DisbursedLoan {
	var out []DisbursedLoan
	for _, loan := range loans {
		if loan.AgentID == agentID {
			out = append(out, loan)
		}
	}
	return out
}
