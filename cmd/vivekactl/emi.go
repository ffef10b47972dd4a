package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"viveka/internal/cli"
	"viveka/internal/core"
	"viveka/internal/finance"
)

func newEMICmd(a *app) *cobra.Command {
	var principal, rate, months string
	cmd := &cobra.Command{
		Use:   "emi",
		Short: "Calculate the EMI for a principal, rate and term",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			in := loanInput{Principal: principal, Rate: rate, Months: months}
			var errs core.ValidationErrors
			for _, check := range []struct {
				field string
				err   error
			}{
				{"principal", validAmount(in.Principal)},
				{"interest_rate", validRate(in.Rate)},
				{"total_months", validMonths(in.Months)},
			} {
				if check.err != nil {
					errs = append(errs, core.ValidationError{Field: check.field, Message: check.field + ": " + check.err.Error()})
				}
			}
			if len(errs) > 0 {
				return errs
			}

			p, _ := core.ParseAmount(in.Principal)
			r, _ := parseRate(in.Rate)
			m, _ := strconv.Atoi(strings.TrimSpace(in.Months))
			emi := finance.CalculateEMI(p, r, m)
			payable := emi * int64(m)

			a.println()
			a.println(cli.RenderTable(cli.Table{
				Headers: []string{"EMI calculator", ""},
				Rows: [][]string{
					{"Principal", cli.Money(p)},
					{"Rate", fmt.Sprintf("%s%% a year", strconv.FormatFloat(r, 'f', -1, 64))},
					{"Term", fmt.Sprintf("%d months", m)},
					cli.SeparatorRow,
					{"Monthly EMI", cli.Money(emi)},
					{"Total interest", cli.Money(payable - p)},
					{"Total payable", cli.Money(payable)},
				},
			}))
			return nil
		},
	}
	cmd.Flags().StringVar(&principal, "principal", "", "Principal amount")
	cmd.Flags().StringVar(&rate, "rate", "", "Yearly interest rate in percent")
	cmd.Flags().StringVar(&months, "months", "", "Term in months")
	return cmd
}
