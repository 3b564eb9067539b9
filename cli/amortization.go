package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/warp/lending-engine/amortization"
)

// ─── payment ────────────────────────────────────────────────────────────────

func newPaymentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payment",
		Short:   "Fixed monthly installment of an annuity loan",
		Example: `  loancalc payment --principal 50000 --rate 15 --months 12`,
		RunE:    runPayment,
	}
	cmd.Flags().String("principal", "", "Loan principal")
	cmd.Flags().String("rate", "", "Annual interest rate in percent")
	cmd.Flags().Int("months", 0, "Term in months")
	return cmd
}

type paymentOutput struct {
	InstallmentPayment string `json:"installment_payment"`
	TotalRepayment     string `json:"total_repayment"`
	TotalInterest      string `json:"total_interest"`
}

func runPayment(cmd *cobra.Command, _ []string) error {
	principal, err := decimalFlag(cmd, "principal")
	if err != nil {
		return err
	}
	rate, err := decimalFlag(cmd, "rate")
	if err != nil {
		return err
	}
	months, _ := cmd.Flags().GetInt("months")

	payment, err := amortization.InstallmentPayment(principal, rate, months)
	if err != nil {
		return err
	}
	total, err := amortization.TotalRepayment(principal, rate, months)
	if err != nil {
		return err
	}
	interest, err := amortization.TotalInterest(principal, rate, months)
	if err != nil {
		return err
	}

	out := paymentOutput{
		InstallmentPayment: money(payment),
		TotalRepayment:     money(total),
		TotalInterest:      money(interest),
	}
	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), out)
	}
	return printTable(cmd.OutOrStdout(),
		[]string{"INSTALLMENT", "TOTAL REPAYMENT", "TOTAL INTEREST"},
		[][]string{{out.InstallmentPayment, out.TotalRepayment, out.TotalInterest}},
	)
}

// ─── schedule ───────────────────────────────────────────────────────────────

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Simple-interest payment schedule",
		Long: `Splits principal plus flat interest evenly over installments.
Frequency sets the interval: daily (1 day), weekly (7), biweekly (14),
monthly (30).`,
		Example: `  loancalc schedule --principal 100000 --rate 10 --days 90 --frequency monthly --first 2024-01-01`,
		RunE:    runSchedule,
	}
	cmd.Flags().String("principal", "", "Loan principal")
	cmd.Flags().String("rate", "", "Flat interest rate in percent of principal")
	cmd.Flags().Int("days", 0, "Term in days")
	cmd.Flags().String("frequency", string(amortization.Monthly), "daily, weekly, biweekly or monthly")
	cmd.Flags().String("first", "", "First payment date (YYYY-MM-DD, default today)")
	return cmd
}

type installmentOutput struct {
	Number    int    `json:"number"`
	DueDate   string `json:"due_date"`
	Principal string `json:"principal"`
	Interest  string `json:"interest"`
	Total     string `json:"total"`
}

type scheduleOutput struct {
	Installments   []installmentOutput `json:"installments"`
	TotalPrincipal string              `json:"total_principal"`
	TotalInterest  string              `json:"total_interest"`
	TotalAmount    string              `json:"total_amount"`
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	principal, err := decimalFlag(cmd, "principal")
	if err != nil {
		return err
	}
	rate, err := decimalFlag(cmd, "rate")
	if err != nil {
		return err
	}
	days, _ := cmd.Flags().GetInt("days")
	rawFreq, _ := cmd.Flags().GetString("frequency")
	freq, err := amortization.ParseFrequency(rawFreq)
	if err != nil {
		return err
	}
	first, err := dateFlag(cmd, "first")
	if err != nil {
		return err
	}

	schedule, err := amortization.BuildPaymentSchedule(principal, rate, days, freq, first)
	if err != nil {
		return err
	}

	out := scheduleOutput{
		Installments:   make([]installmentOutput, schedule.Len()),
		TotalPrincipal: money(schedule.TotalPrincipal()),
		TotalInterest:  money(schedule.TotalInterest()),
		TotalAmount:    money(schedule.TotalAmount()),
	}
	rows := make([][]string, 0, schedule.Len()+1)
	for i, inst := range schedule.Installments {
		out.Installments[i] = installmentOutput{
			Number:    inst.Number,
			DueDate:   inst.DueDate.String(),
			Principal: money(inst.Principal),
			Interest:  money(inst.Interest),
			Total:     money(inst.Total),
		}
		o := out.Installments[i]
		rows = append(rows, []string{strconv.Itoa(o.Number), o.DueDate, o.Principal, o.Interest, o.Total})
	}

	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), out)
	}
	rows = append(rows, []string{"", "TOTAL", out.TotalPrincipal, out.TotalInterest, out.TotalAmount})
	return printTable(cmd.OutOrStdout(), []string{"#", "DUE", "PRINCIPAL", "INTEREST", "TOTAL"}, rows)
}

// ─── annuity ────────────────────────────────────────────────────────────────

func newAnnuityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "annuity",
		Short:   "Month-by-month breakdown of an annuity loan",
		Example: `  loancalc annuity --principal 10000 --rate 12 --months 12 --first 2024-01-01`,
		RunE:    runAnnuity,
	}
	cmd.Flags().String("principal", "", "Loan principal")
	cmd.Flags().String("rate", "", "Annual interest rate in percent")
	cmd.Flags().Int("months", 0, "Term in months")
	cmd.Flags().String("first", "", "First payment date (YYYY-MM-DD, default today)")
	return cmd
}

type annuityRowOutput struct {
	Number    int    `json:"number"`
	DueDate   string `json:"due_date"`
	Payment   string `json:"payment"`
	Principal string `json:"principal"`
	Interest  string `json:"interest"`
	Balance   string `json:"remaining_balance"`
}

type annuityOutput struct {
	MonthlyPayment string             `json:"monthly_payment"`
	TotalPaid      string             `json:"total_paid"`
	TotalInterest  string             `json:"total_interest"`
	Rows           []annuityRowOutput `json:"rows"`
}

func runAnnuity(cmd *cobra.Command, _ []string) error {
	principal, err := decimalFlag(cmd, "principal")
	if err != nil {
		return err
	}
	rate, err := decimalFlag(cmd, "rate")
	if err != nil {
		return err
	}
	months, _ := cmd.Flags().GetInt("months")
	first, err := dateFlag(cmd, "first")
	if err != nil {
		return err
	}

	result, err := amortization.AnnuitySchedule(principal, rate, months, first)
	if err != nil {
		return err
	}

	out := annuityOutput{
		MonthlyPayment: money(result.MonthlyPayment),
		TotalPaid:      money(result.TotalPaid),
		TotalInterest:  money(result.TotalInterest),
		Rows:           make([]annuityRowOutput, len(result.Rows)),
	}
	rows := make([][]string, 0, len(result.Rows)+1)
	for i, row := range result.Rows {
		o := annuityRowOutput{
			Number:    row.Number,
			DueDate:   row.DueDate.String(),
			Payment:   money(row.Payment),
			Principal: money(row.Principal),
			Interest:  money(row.Interest),
			Balance:   money(row.RemainingBalance),
		}
		out.Rows[i] = o
		rows = append(rows, []string{strconv.Itoa(o.Number), o.DueDate, o.Payment, o.Principal, o.Interest, o.Balance})
	}

	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), out)
	}
	rows = append(rows, []string{"", "TOTAL", out.TotalPaid, "", out.TotalInterest, ""})
	return printTable(cmd.OutOrStdout(), []string{"#", "DUE", "PAYMENT", "PRINCIPAL", "INTEREST", "BALANCE"}, rows)
}
