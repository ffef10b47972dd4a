package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"viveka/internal/cli"
)

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Cashflow and EMI dashboard",
		Args:  cobra.NoArgs,
		RunE:  a.runSummary,
	}
}

func (a *app) runSummary(cmd *cobra.Command, _ []string) error {
	res, err := a.backend(cmd.Context())
	if err != nil {
		return err
	}
	s, err := res.Dashboard.Summary(cmd.Context())
	if err != nil {
		return err
	}

	a.println()
	a.println(cli.RenderTitle("VIVEKA DASHBOARD"))
	a.println()

	rows := [][]string{
		{"Income", cli.Money(s.Income)},
		{"Fixed expenses", cli.Money(s.FixedExpenses)},
		{"Variable expenses", cli.Money(s.VariableExpenses)},
		{"Surplus", cli.Money(s.Surplus) + "  " + cli.Label(s.SurplusStatus)},
		cli.SeparatorRow,
		{"Active EMIs", fmt.Sprint(s.ActiveEMICount)},
		{"Total EMI", cli.Money(s.TotalEMI)},
		{"Free cash after EMI", cli.Money(s.FreeCashAfterEMI) + "  " + cli.Label(s.CashflowSignal)},
		cli.SeparatorRow,
		{"Living cost", cli.Percent(s.LivingCostPct) + "  " + cli.Label(s.LivingCostLabel)},
		{"Debt pressure", cli.Percent(s.DebtPressurePct) + "  " + cli.Label(s.DebtPressureLabel)},
		{"Savings capacity", cli.Percent(s.SavingsCapacityPct) + "  " + cli.Label(s.SavingsCapacityLabel)},
		{"Risk score", fmt.Sprintf("%d/100", s.RiskScore) + "  " + cli.Label(s.RiskCategory)},
	}
	a.println(cli.RenderTable(cli.Table{Headers: []string{"Metric", "Value"}, Rows: rows}))

	if nc := s.NextClosing; nc != nil {
		a.println(fmt.Sprintf("  Next closing: %s (%s) in %d months, frees %s/month",
			nc.LoanNo, nc.Lender, nc.MonthsLeft, cli.Money(nc.FreesEMI)))
	} else {
		a.println(cli.Muted("  No active EMI loans."))
	}
	return nil
}
