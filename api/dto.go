/*
dto.go - Data Transfer Objects for API requests and responses

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO: Response types returned to clients

MONEY:
  Request amounts are decimal.Decimal, which accepts both "1500.50" and
  1500.50. Response amounts are strings with exactly two decimals so
  clients never see binary floating point.

DATES:
  YYYY-MM-DD everywhere. Timestamps (created_at) are RFC3339.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/ratetable.go: RateTableJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/lending-engine/amortization"
	"github.com/warp/lending-engine/commission"
	"github.com/warp/lending-engine/factory"
	"github.com/warp/lending-engine/generic"
	"github.com/warp/lending-engine/store/sqlite"
)

// =============================================================================
// AMORTIZATION
// =============================================================================

// PaymentRequest asks for the fixed monthly installment of an annuity loan.
type PaymentRequest struct {
	Principal  decimal.Decimal `json:"principal"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
	TermMonths int             `json:"term_months"`
}

type PaymentDTO struct {
	InstallmentPayment string `json:"installment_payment"`
	TotalRepayment     string `json:"total_repayment"`
	TotalInterest      string `json:"total_interest"`
}

// ScheduleRequest asks for a simple-interest schedule. An empty frequency
// means monthly; an empty first_payment_date means today.
type ScheduleRequest struct {
	Principal        decimal.Decimal `json:"principal"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	TermDays         int             `json:"term_days"`
	Frequency        string          `json:"frequency"`
	FirstPaymentDate string          `json:"first_payment_date"`
}

type InstallmentDTO struct {
	Number    int    `json:"number"`
	DueDate   string `json:"due_date"`
	Principal string `json:"principal"`
	Interest  string `json:"interest"`
	Total     string `json:"total"`
}

type ScheduleDTO struct {
	Frequency      string           `json:"frequency"`
	IntervalDays   int              `json:"interval_days"`
	Installments   []InstallmentDTO `json:"installments"`
	TotalPrincipal string           `json:"total_principal"`
	TotalInterest  string           `json:"total_interest"`
	TotalAmount    string           `json:"total_amount"`
	LastDueDate    string           `json:"last_due_date,omitempty"`
}

// AnnuityScheduleRequest asks for the month-by-month breakdown of an
// annuity loan.
type AnnuityScheduleRequest struct {
	Principal        decimal.Decimal `json:"principal"`
	AnnualRate       decimal.Decimal `json:"annual_rate"`
	TermMonths       int             `json:"term_months"`
	FirstPaymentDate string          `json:"first_payment_date"`
}

type AnnuityRowDTO struct {
	Number           int    `json:"number"`
	DueDate          string `json:"due_date"`
	Payment          string `json:"payment"`
	Principal        string `json:"principal"`
	Interest         string `json:"interest"`
	RemainingBalance string `json:"remaining_balance"`
}

type AnnuityScheduleDTO struct {
	MonthlyPayment string          `json:"monthly_payment"`
	TotalPaid      string          `json:"total_paid"`
	TotalInterest  string          `json:"total_interest"`
	Rows           []AnnuityRowDTO `json:"rows"`
}

// =============================================================================
// COMMISSIONS
// =============================================================================

// CommissionRequest computes a commission. An empty rate_table_id uses the
// default table.
type CommissionRequest struct {
	LoanAmount  decimal.Decimal `json:"loan_amount"`
	RateTableID string          `json:"rate_table_id,omitempty"`
}

type CommissionDTO struct {
	LoanAmount       string `json:"loan_amount"`
	CommissionRate   string `json:"commission_rate"`
	CommissionAmount string `json:"commission_amount"`
	NetAmount        string `json:"net_amount"`
	AgentCommission  string `json:"agent_commission"`
	InstitutionShare string `json:"institution_share"`
	Tier             string `json:"tier"`
}

type ProjectionRequest struct {
	LoanAmount  decimal.Decimal `json:"loan_amount"`
	TermMonths  int             `json:"term_months"`
	RateTableID string          `json:"rate_table_id,omitempty"`
}

type ProjectionDTO struct {
	UpfrontCommission string `json:"upfront_commission"`
	MonthlyProjection string `json:"monthly_projection"`
	TotalProjection   string `json:"total_projection"`
}

// AgentSummaryDTO is an agent's commission summary over [from, to].
type AgentSummaryDTO struct {
	AgentID               string `json:"agent_id"`
	From                  string `json:"from"`
	To                    string `json:"to"`
	TotalLoans            int    `json:"total_loans"`
	TotalLoanAmount       string `json:"total_loan_amount"`
	TotalCommission       string `json:"total_commission"`
	AverageCommissionRate string `json:"average_commission_rate"`
}

// =============================================================================
// RATE TABLES
// =============================================================================

// RateTableDTO represents a stored rate table in API responses.
type RateTableDTO struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Config    factory.RateTableJSON `json:"config"`
	Tiers     []string              `json:"tiers"`
	Version   int                   `json:"version"`
	CreatedAt string                `json:"created_at,omitempty"`
	UpdatedAt string                `json:"updated_at,omitempty"`
}

// =============================================================================
// LOANS
// =============================================================================

// CreateLoanRequest originates a loan. The commission is computed from
// rate_table_id (or the default table) and stored with the loan.
type CreateLoanRequest struct {
	ID           string          `json:"id,omitempty"`
	AgentID      string          `json:"agent_id"`
	ClientName   string          `json:"client_name"`
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	TermDays     int             `json:"term_days"`
	Frequency    string          `json:"frequency"`
	RateTableID  string          `json:"rate_table_id,omitempty"`
	DisbursedAt  string          `json:"disbursed_at,omitempty"`
}

// DisburseRequest marks a loan disbursed. An empty date means today.
type DisburseRequest struct {
	Date string `json:"date"`
}

type LoanDTO struct {
	ID               string  `json:"id"`
	AgentID          string  `json:"agent_id"`
	ClientName       string  `json:"client_name"`
	Amount           string  `json:"amount"`
	InterestRate     string  `json:"interest_rate"`
	TermDays         int     `json:"term_days"`
	Frequency        string  `json:"frequency"`
	RateTableID      string  `json:"rate_table_id,omitempty"`
	CommissionAmount string  `json:"commission_amount"`
	DisbursedAt      *string `json:"disbursed_at"`
	CreatedAt        string  `json:"created_at,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo loan book.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// COMMON
// =============================================================================

// ErrorResponse is the error envelope for all failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func money(d decimal.Decimal) string {
	return d.StringFixed(generic.MoneyPlaces)
}

func toScheduleDTO(freq amortization.Frequency, s amortization.Schedule) ScheduleDTO {
	dto := ScheduleDTO{
		Frequency:      string(freq),
		IntervalDays:   s.IntervalDays,
		Installments:   make([]InstallmentDTO, len(s.Installments)),
		TotalPrincipal: money(s.TotalPrincipal()),
		TotalInterest:  money(s.TotalInterest()),
		TotalAmount:    money(s.TotalAmount()),
	}
	for i, inst := range s.Installments {
		dto.Installments[i] = InstallmentDTO{
			Number:    inst.Number,
			DueDate:   inst.DueDate.String(),
			Principal: money(inst.Principal),
			Interest:  money(inst.Interest),
			Total:     money(inst.Total),
		}
	}
	if s.Len() > 0 {
		dto.LastDueDate = s.LastDueDate().String()
	}
	return dto
}

func toAnnuityDTO(res amortization.AnnuityResult) AnnuityScheduleDTO {
	dto := AnnuityScheduleDTO{
		MonthlyPayment: money(res.MonthlyPayment),
		TotalPaid:      money(res.TotalPaid),
		TotalInterest:  money(res.TotalInterest),
		Rows:           make([]AnnuityRowDTO, len(res.Rows)),
	}
	for i, row := range res.Rows {
		dto.Rows[i] = AnnuityRowDTO{
			Number:           row.Number,
			DueDate:          row.DueDate.String(),
			Payment:          money(row.Payment),
			Principal:        money(row.Principal),
			Interest:         money(row.Interest),
			RemainingBalance: money(row.RemainingBalance),
		}
	}
	return dto
}

func toCommissionDTO(res commission.Result) CommissionDTO {
	return CommissionDTO{
		LoanAmount:       money(res.LoanAmount),
		CommissionRate:   res.CommissionRate.String(),
		CommissionAmount: money(res.CommissionAmount),
		NetAmount:        money(res.NetAmount),
		AgentCommission:  money(res.AgentCommission),
		InstitutionShare: money(res.InstitutionShare),
		Tier:             res.Tier.String(),
	}
}

func toLoanDTO(l sqlite.LoanRecord) LoanDTO {
	dto := LoanDTO{
		ID:               l.ID,
		AgentID:          l.AgentID,
		ClientName:       l.ClientName,
		Amount:           money(l.Amount),
		InterestRate:     l.InterestRate.String(),
		TermDays:         l.TermDays,
		Frequency:        l.Frequency,
		RateTableID:      l.RateTableID,
		CommissionAmount: money(l.CommissionAmount),
	}
	if l.DisbursedAt != nil {
		s := l.DisbursedAt.String()
		dto.DisbursedAt = &s
	}
	if !l.CreatedAt.IsZero() {
		dto.CreatedAt = l.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toRateTableDTO(rec sqlite.RateTableRecord, cfg factory.RateTableJSON, table commission.RateTable) RateTableDTO {
	tiers := make([]string, len(table))
	for i, tier := range table {
		tiers[i] = tier.String()
	}
	return RateTableDTO{
		ID:        rec.ID,
		Name:      rec.Name,
		Config:    cfg,
		Tiers:     tiers,
		Version:   rec.Version,
		CreatedAt: formatTime(rec.CreatedAt),
		UpdatedAt: formatTime(rec.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
