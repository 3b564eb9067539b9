// Package cli implements the loancalc command line: offline access to the
// amortization and commission engines, printed as aligned tables or JSON.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/warp/lending-engine/commission"
	"github.com/warp/lending-engine/factory"
	"github.com/warp/lending-engine/generic"
)

// NewRootCmd builds the loancalc command tree. A fresh tree per call keeps
// flag state out of package globals.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "loancalc",
		Short: "Loan amortization and commission calculator",
		Long: `loancalc runs the lending engine locally: annuity installments,
simple-interest payment schedules and tiered agent commissions.
Amounts are decimal strings, so "1500.50" is exact.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("json", false, "Print results as JSON")

	root.AddCommand(newPaymentCmd())
	root.AddCommand(newScheduleCmd())
	root.AddCommand(newAnnuityCmd())
	root.AddCommand(newCommissionCmd())
	root.AddCommand(newProjectCmd())
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// ─── Flag helpers ───────────────────────────────────────────────────────────

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("--%s is required", name)
	}
	d, err := generic.ParseDecimal(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

// dateFlag parses a YYYY-MM-DD flag; empty means today.
func dateFlag(cmd *cobra.Command, name string) (generic.Date, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return generic.Today(), nil
	}
	d, err := generic.ParseDate(raw)
	if err != nil {
		return generic.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

// rateTableFlag loads --table from a JSON file. No flag means the default
// table (nil).
func rateTableFlag(cmd *cobra.Command) (commission.RateTable, error) {
	path, _ := cmd.Flags().GetString("table")
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate table: %w", err)
	}
	_, table, err := factory.NewRateTableFactory().ParseRateTable(string(data))
	if err != nil {
		return nil, err
	}
	return table, nil
}

// ─── Output helpers ─────────────────────────────────────────────────────────

func wantJSON(cmd *cobra.Command) bool {
	asJSON, _ := cmd.Flags().GetBool("json")
	return asJSON
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable writes tab-separated rows aligned into columns.
func printTable(out io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	writeRow(tw, header)
	for _, row := range rows {
		writeRow(tw, row)
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, cell)
	}
	fmt.Fprintln(w)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(generic.MoneyPlaces)
}
