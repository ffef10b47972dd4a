package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"viveka/internal/cli"
	"viveka/internal/core"
	"viveka/internal/finance"
)

func newLoansCmd(a *app) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "List loans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}
			loans, err := res.Dashboard.LoanList(cmd.Context(), filter)
			if err != nil {
				return err
			}
			today, err := a.today()
			if err != nil {
				return err
			}
			if len(loans) == 0 {
				a.println(cli.Muted(fmt.Sprintf("\n  No %s loans.", filter)))
				return nil
			}

			rows := make([][]string, 0, len(loans)+2)
			for _, l := range loans {
				v := finance.View(l, today)
				rows = append(rows, []string{
					l.LoanNo,
					l.Lender,
					cli.Money(l.EMI),
					fmt.Sprintf("%d/%d", l.MonthsPaid, l.TotalMonths),
					cli.Money(v.Figures.Balance),
					v.CloseBy,
					loanState(l),
					shortID(l.ID),
				})
			}
			sum := finance.SummarizeLoans(loans)
			rows = append(rows, cli.SeparatorRow, []string{
				fmt.Sprintf("%d loans", sum.Count), "", cli.Money(finance.TotalEMI(loans)),
				fmt.Sprintf("%d left", sum.Pending), cli.Money(sum.Balance), "", "", "",
			})

			a.println()
			a.println(cli.RenderTable(cli.Table{
				Title:   "Loans (" + filter + ")",
				Headers: []string{"Loan No", "Lender", "EMI", "Paid", "Balance", "Close by", "State", "ID"},
				Rows:    rows,
			}))
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", finance.FilterActive,
		"active, archived, settlement, closed or all")
	return cmd
}

func newOverviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Progress of active EMI loans, closest to completion first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}
			today, err := a.today()
			if err != nil {
				return err
			}
			ov, err := res.Dashboard.LoanOverview(cmd.Context(), today)
			if err != nil {
				return err
			}
			if len(ov.Loans) == 0 {
				a.println(cli.Muted("\n  No active EMI loans."))
				return nil
			}

			rows := make([][]string, 0, len(ov.Loans))
			for _, v := range ov.Loans {
				rows = append(rows, []string{
					v.Loan.LoanNo,
					cli.RenderProgressBar(v.Progress, 20),
					cli.Label(v.ProgressBand),
					fmt.Sprint(v.MonthsLeft),
					v.CloseBy,
					cli.Money(v.Figures.Balance),
				})
			}
			rows = append(rows, cli.SeparatorRow, []string{
				"Total", "", "", fmt.Sprint(ov.Summary.Pending), "", cli.Money(ov.Summary.Balance),
			})

			a.println()
			a.println(cli.RenderTable(cli.Table{
				Title:   "Overview as of " + ov.AsOf.Format("2 Jan 2006"),
				Headers: []string{"Loan No", "Progress", "Band", "Left", "Close by", "Balance"},
				Rows:    rows,
			}))
			return nil
		},
	}
}

func loanState(l core.Loan) string {
	state := string(l.Status)
	if l.Archived && !l.IsClosed() {
		state += " (archived)"
	}
	return state
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
