package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"viveka/internal/backend"
	"viveka/internal/cli"
	"viveka/internal/core"
	"viveka/internal/finance"
)

func newLoanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Create, edit and update a single loan",
	}
	cmd.AddCommand(
		newLoanAddCmd(a),
		newLoanEditCmd(a),
		newLoanShowCmd(a),
		loanActionCmd(a, "archive", "Hide a loan from active views", func(res *backend.BackendResult) loanOp { return res.Loans.Archive }),
		loanActionCmd(a, "restore", "Bring an archived loan back", func(res *backend.BackendResult) loanOp { return res.Loans.Restore }),
		loanActionCmd(a, "close", "Close a loan for good", func(res *backend.BackendResult) loanOp { return res.Loans.Close }),
		monthlyActionCmd(a, "pay", "Record this month's EMI", func(res *backend.BackendResult) monthlyOp { return res.Loans.MarkPaid }),
		monthlyActionCmd(a, "undo", "Undo this month's EMI payment", func(res *backend.BackendResult) monthlyOp { return res.Loans.UndoPaid }),
		newLoanExtraCmd(a),
	)
	return cmd
}

type (
	loanOp    func(ctx context.Context, id string) (core.Loan, error)
	monthlyOp func(ctx context.Context, id string, asOf time.Time) (core.Loan, error)
)

// loanFlags binds the editable loan fields to flags.
func loanFlags(cmd *cobra.Command, in *loanInput, interactive *bool) {
	fs := cmd.Flags()
	fs.StringVar(&in.LoanNo, "loan-no", "", "Loan number, unique across loans")
	fs.StringVar(&in.Lender, "lender", "", "Lender name")
	fs.StringVar(&in.Principal, "principal", "", "Principal amount, e.g. 1,20,000")
	fs.StringVar(&in.Rate, "rate", "", "Yearly interest rate in percent")
	fs.StringVar(&in.Months, "months", "", "Term in months")
	fs.StringVar(&in.EMI, "emi", "", "Monthly EMI (calculated when omitted)")
	fs.BoolVar(&in.InterestOnly, "interest-only", false, "EMI covers interest only")
	fs.BoolVarP(interactive, "interactive", "i", false, "Fill in the fields with a form")
}

func newLoanAddCmd(a *app) *cobra.Command {
	var (
		in          loanInput
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an EMI loan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interactive || !in.complete() {
				if err := runLoanForm("New loan", &in); err != nil {
					return err
				}
			}
			fields, err := in.fields()
			if err != nil {
				return err
			}
			res, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}
			loan, err := res.Loans.Create(cmd.Context(), fields)
			if err != nil {
				return err
			}
			a.println(fmt.Sprintf("  Added %s (%s), EMI %s, id %s", loan.LoanNo, loan.Lender, cli.Money(loan.EMI), loan.ID))
			return nil
		},
	}
	loanFlags(cmd, &in, &interactive)
	return cmd
}

func newLoanEditCmd(a *app) *cobra.Command {
	var (
		flags       loanInput
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "edit <loan>",
		Short: "Change a loan's details",
		Long:  "Change a loan's details. Only the given flags change; payment progress is kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}
			loan, err := resolveLoan(cmd.Context(), res, args[0])
			if err != nil {
				return err
			}

			in := inputFromLoan(loan)
			fs := cmd.Flags()
			for name, dst := range map[string]*string{
				"loan-no": &in.LoanNo, "lender": &in.Lender, "principal": &in.Principal,
				"rate": &in.Rate, "months": &in.Months, "emi": &in.EMI,
			} {
				if fs.Changed(name) {
					v, _ := fs.GetString(name)
					*dst = v
				}
			}
			if fs.Changed("interest-only") {
				in.InterestOnly = flags.InterestOnly
			}
			if interactive {
				if err := runLoanForm("Edit "+loan.LoanNo, &in); err != nil {
					return err
				}
			}

			fields, err := in.fields()
			if err != nil {
				return err
			}
			updated, err := res.Loans.Update(cmd.Context(), loan.ID, fields)
			if err != nil {
				return err
			}
			a.println(fmt.Sprintf("  Updated %s", updated.LoanNo))
			return nil
		},
	}
	loanFlags(cmd, &flags, &interactive)
	return cmd
}

func newLoanShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <loan>",
		Short: "Show a loan with its figures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}
			loan, err := resolveLoan(cmd.Context(), res, args[0])
			if err != nil {
				return err
			}
			today, err := a.today()
			if err != nil {
				return err
			}
			a.printLoan(finance.View(loan, today))
			return nil
		},
	}
}

func loanActionCmd(a *app, name, short string, pick func(*backend.BackendResult) loanOp) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <loan>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}
			loan, err := resolveLoan(cmd.Context(), res, args[0])
			if err != nil {
				return err
			}
			loan, err = pick(res)(cmd.Context(), loan.ID)
			if err != nil {
				return err
			}
			a.println(fmt.Sprintf("  %s: %s", loan.LoanNo, loanState(loan)))
			return nil
		},
	}
}

func monthlyActionCmd(a *app, name, short string, pick func(*backend.BackendResult) monthlyOp) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <loan>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := a.today()
			if err != nil {
				return err
			}
			res, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}
			loan, err := resolveLoan(cmd.Context(), res, args[0])
			if err != nil {
				return err
			}
			loan, err = pick(res)(cmd.Context(), loan.ID, today)
			if err != nil {
				return err
			}
			a.println(fmt.Sprintf("  %s: %d/%d EMIs paid, %d left",
				loan.LoanNo, loan.MonthsPaid, loan.TotalMonths, finance.MonthsLeft(loan)))
			return nil
		},
	}
}

func newLoanExtraCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extra <loan> <amount>",
		Short: "Set the total paid outside scheduled EMIs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[1])
			if err != nil {
				return core.ValidationErrors{{Field: "extra_paid", Message: "Extra paid must be a whole amount of at least 0"}}
			}
			res, err := a.backend(cmd.Context())
			if err != nil {
				return err
			}
			loan, err := resolveLoan(cmd.Context(), res, args[0])
			if err != nil {
				return err
			}
			loan, err = res.Loans.SetExtraPaid(cmd.Context(), loan.ID, amount)
			if err != nil {
				return err
			}
			a.println(fmt.Sprintf("  %s: extra paid %s, balance %s",
				loan.LoanNo, cli.Money(loan.ExtraPaid), cli.Money(finance.RemainingBalance(loan))))
			return nil
		},
	}
}

// resolveLoan accepts a full id, a loan number or a unique id prefix.
func resolveLoan(ctx context.Context, res *backend.BackendResult, ref string) (core.Loan, error) {
	loans, err := res.Dashboard.AllLoans(ctx)
	if err != nil {
		return core.Loan{}, err
	}
	ref = strings.TrimSpace(ref)
	for _, l := range loans {
		if l.ID == ref {
			return l, nil
		}
	}
	for _, l := range loans {
		if core.NormalizeLoanNo(l.LoanNo) == core.NormalizeLoanNo(ref) {
			return l, nil
		}
	}

	var matches []core.Loan
	for _, l := range loans {
		if ref != "" && strings.HasPrefix(l.ID, ref) {
			matches = append(matches, l)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return core.Loan{}, fmt.Errorf("%w: %s", core.ErrLoanNotFound, ref)
	default:
		return core.Loan{}, fmt.Errorf("%q matches %d loans, use more of the id", ref, len(matches))
	}
}

func (a *app) printLoan(v core.LoanView) {
	l, f := v.Loan, v.Figures
	kind := "amortizing"
	if l.InterestOnly {
		kind = "interest only"
	}
	paidThisMonth := "no"
	if v.PaidThisMonth {
		paidThisMonth = "yes"
	}

	rows := [][]string{
		{"Lender", l.Lender},
		{"State", loanState(l)},
		{"Kind", kind},
		{"Rate", strconv.FormatFloat(l.InterestRate, 'f', -1, 64) + "%"},
		{"EMI", cli.Money(l.EMI)},
		{"Paid", fmt.Sprintf("%d/%d", l.MonthsPaid, l.TotalMonths)},
		{"Paid this month", paidThisMonth},
		{"Progress", cli.RenderProgressBar(v.Progress, 20) + " " + cli.Label(v.ProgressBand)},
		{"Close by", v.CloseBy},
		cli.SeparatorRow,
		{"Principal", cli.Money(f.Principal)},
		{"Interest", cli.Money(f.Interest)},
		{"Total payable", cli.Money(f.Payable)},
		{"Paid so far", cli.Money(f.Paid)},
		{"Extra paid", cli.Money(l.ExtraPaid)},
		{"Balance", cli.Money(f.Balance)},
	}
	a.println()
	a.println(cli.RenderTable(cli.Table{Title: l.LoanNo + "  " + cli.Muted(l.ID), Headers: []string{"Field", "Value"}, Rows: rows}))
}
