package cli

import (
	"github.com/spf13/cobra"

	"github.com/warp/lending-engine/commission"
)

// ─── commission ─────────────────────────────────────────────────────────────

func newCommissionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "commission",
		Short:   "Tiered commission and 60/40 agent split for a loan amount",
		Example: `  loancalc commission --amount 75000 --table promo.json`,
		RunE:    runCommission,
	}
	cmd.Flags().String("amount", "", "Loan amount")
	cmd.Flags().String("table", "", "Rate table JSON file (default: built-in table)")
	return cmd
}

type commissionOutput struct {
	LoanAmount       string `json:"loan_amount"`
	Tier             string `json:"tier"`
	CommissionRate   string `json:"commission_rate"`
	CommissionAmount string `json:"commission_amount"`
	NetAmount        string `json:"net_amount"`
	AgentCommission  string `json:"agent_commission"`
	InstitutionShare string `json:"institution_share"`
}

func runCommission(cmd *cobra.Command, _ []string) error {
	amount, err := decimalFlag(cmd, "amount")
	if err != nil {
		return err
	}
	table, err := rateTableFlag(cmd)
	if err != nil {
		return err
	}

	result, err := commission.Calculate(amount, table)
	if err != nil {
		return err
	}

	out := commissionOutput{
		LoanAmount:       money(result.LoanAmount),
		Tier:             result.Tier.String(),
		CommissionRate:   result.CommissionRate.String(),
		CommissionAmount: money(result.CommissionAmount),
		NetAmount:        money(result.NetAmount),
		AgentCommission:  money(result.AgentCommission),
		InstitutionShare: money(result.InstitutionShare),
	}
	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), out)
	}
	return printTable(cmd.OutOrStdout(), []string{"FIELD", "VALUE"}, [][]string{
		{"loan amount", out.LoanAmount},
		{"tier", out.Tier},
		{"commission", out.CommissionAmount},
		{"net amount", out.NetAmount},
		{"agent", out.AgentCommission},
		{"institution", out.InstitutionShare},
	})
}

// ─── project ────────────────────────────────────────────────────────────────

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Short:   "Spread the agent commission over the loan term",
		Example: `  loancalc project --amount 75000 --months 12`,
		RunE:    runProject,
	}
	cmd.Flags().String("amount", "", "Loan amount")
	cmd.Flags().Int("months", 0, "Term in months")
	cmd.Flags().String("table", "", "Rate table JSON file (default: built-in table)")
	return cmd
}

type projectionOutput struct {
	UpfrontCommission string `json:"upfront_commission"`
	MonthlyProjection string `json:"monthly_projection"`
	TotalProjection   string `json:"total_projection"`
}

func runProject(cmd *cobra.Command, _ []string) error {
	amount, err := decimalFlag(cmd, "amount")
	if err != nil {
		return err
	}
	months, _ := cmd.Flags().GetInt("months")
	table, err := rateTableFlag(cmd)
	if err != nil {
		return err
	}

	projection, err := commission.Project(amount, months, table)
	if err != nil {
		return err
	}

	out := projectionOutput{
		UpfrontCommission: money(projection.UpfrontCommission),
		MonthlyProjection: money(projection.MonthlyProjection),
		TotalProjection:   money(projection.TotalProjection),
	}
	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), out)
	}
	return printTable(cmd.OutOrStdout(),
		[]string{"UPFRONT", "MONTHLY", "TOTAL"},
		[][]string{{out.UpfrontCommission, out.MonthlyProjection, out.TotalProjection}},
	)
}
