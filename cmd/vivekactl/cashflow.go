package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"viveka/internal/cli"
	"viveka/internal/core"
	"viveka/internal/finance"
)

func newCashflowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cashflow",
		Short: "Show or replace the monthly cashflow profile",
	}
	cmd.AddCommand(newCashflowShowCmd(a), newCashflowSetCmd(a))
	return cmd
}

func newCashflowShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show income and expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}
			p, err := res.Cashflow.Get(cmd.Context())
			if err != nil {
				return err
			}
			a.printCashflow(p)
			return nil
		},
	}
}

func newCashflowSetCmd(a *app) *cobra.Command {
	var (
		income   string
		fixed    []string
		variable []string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the cashflow profile",
		Long: `Replace the cashflow profile. The profile is saved as a whole, so
expenses not given again are removed.

  vivekactl cashflow set --income 85,000 --fixed Rent=22000 --variable Food=9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := parseCashflow(income, fixed, variable)
			if err != nil {
				return err
			}
			res, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}
			saved, err := res.Cashflow.Save(cmd.Context(), p)
			if err != nil {
				return err
			}
			a.printCashflow(saved)
			return nil
		},
	}
	cmd.Flags().StringVar(&income, "income", "0", "Monthly income")
	cmd.Flags().StringArrayVar(&fixed, "fixed", nil, "Fixed expense as Name=Amount, repeatable")
	cmd.Flags().StringArrayVar(&variable, "variable", nil, "Variable expense as Name=Amount, repeatable")
	return cmd
}

// parseCashflow builds a profile from flag values, reporting every bad entry.
func parseCashflow(income string, fixed, variable []string) (core.CashflowProfile, error) {
	var (
		p    core.CashflowProfile
		errs core.ValidationErrors
		err  error
	)
	if p.MonthlyIncome, err = core.ParseAmount(income); err != nil {
		errs = append(errs, core.ValidationError{Field: "monthly_income", Message: "Monthly income must be a whole amount"})
	}

	parse := func(field string, entries []string) []core.ExpenseItem {
		items := make([]core.ExpenseItem, 0, len(entries))
		for _, e := range entries {
			i := strings.LastIndex(e, "=")
			if i < 0 {
				errs = append(errs, core.ValidationError{Field: field, Message: fmt.Sprintf("Expense %q must look like Name=Amount", e)})
				continue
			}
			amount, err := core.ParseAmount(e[i+1:])
			if err != nil {
				errs = append(errs, core.ValidationError{Field: field, Message: fmt.Sprintf("Expense %q has an invalid amount", e)})
				continue
			}
			items = append(items, core.ExpenseItem{Name: e[:i], Amount: amount})
		}
		return items
	}
	p.FixedExpenses = parse("fixed_expenses", fixed)
	p.VariableExpenses = parse("variable_expenses", variable)

	if len(errs) > 0 {
		return core.CashflowProfile{}, errs
	}
	return p, nil
}

func (a *app) printCashflow(p core.CashflowProfile) {
	rows := [][]string{{"Monthly income", cli.Money(p.MonthlyIncome)}, cli.SeparatorRow}
	for _, it := range p.FixedExpenses {
		rows = append(rows, []string{"Fixed: " + it.Name, cli.Money(it.Amount)})
	}
	for _, it := range p.VariableExpenses {
		rows = append(rows, []string{"Variable: " + it.Name, cli.Money(it.Amount)})
	}
	surplus := finance.Surplus(p)
	rows = append(rows,
		cli.SeparatorRow,
		[]string{"Total expenses", cli.Money(finance.TotalExpenses(p))},
		[]string{"Surplus", cli.Money(surplus) + "  " + cli.Label(finance.SurplusStatus(surplus))},
	)
	a.println()
	a.println(cli.RenderTable(cli.Table{Title: "Cashflow", Headers: []string{"Item", "Amount"}, Rows: rows}))
}
