package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"viveka/internal/core"
	"viveka/internal/finance"
)

// loanInput holds loan fields as typed by the user, before parsing.
type loanInput struct {
	LoanNo       string
	Lender       string
	Principal    string
	Rate         string
	Months       string
	EMI          string
	InterestOnly bool
}

func inputFromLoan(l core.Loan) loanInput {
	return loanInput{
		LoanNo:       l.LoanNo,
		Lender:       l.Lender,
		Principal:    strconv.FormatInt(l.Principal, 10),
		Rate:         strconv.FormatFloat(l.InterestRate, 'f', -1, 64),
		Months:       strconv.Itoa(l.TotalMonths),
		EMI:          strconv.FormatInt(l.EMI, 10),
		InterestOnly: l.InterestOnly,
	}
}

// complete reports whether every required field has a value.
func (in loanInput) complete() bool {
	for _, v := range []string{in.LoanNo, in.Lender, in.Principal, in.Rate, in.Months} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// fields parses the input. A blank EMI on an amortizing loan is computed from
// principal, rate and term. Every unparsable field is reported.
func (in loanInput) fields() (core.LoanFields, error) {
	f := core.LoanFields{
		LoanNo:       in.LoanNo,
		Lender:       in.Lender,
		InterestOnly: in.InterestOnly,
	}
	var errs core.ValidationErrors

	principal, err := core.ParseAmount(in.Principal)
	if err != nil {
		errs = append(errs, core.ValidationError{Field: "principal", Message: "Principal must be a whole amount"})
	}
	f.Principal = principal

	rate, err := parseRate(in.Rate)
	if err != nil {
		errs = append(errs, core.ValidationError{Field: "interest_rate", Message: "Interest rate must be a number"})
	}
	f.InterestRate = rate

	months, err := strconv.Atoi(strings.TrimSpace(in.Months))
	if err != nil {
		errs = append(errs, core.ValidationError{Field: "total_months", Message: "Total months must be a whole number"})
	}
	f.TotalMonths = months

	switch emi := strings.TrimSpace(in.EMI); {
	case emi != "":
		v, err := core.ParseAmount(emi)
		if err != nil {
			errs = append(errs, core.ValidationError{Field: "emi", Message: "Monthly EMI must be a whole amount"})
		}
		f.EMI = v
	case !in.InterestOnly && len(errs) == 0:
		f.EMI = finance.CalculateEMI(principal, rate, months)
	}

	if len(errs) > 0 {
		return core.LoanFields{}, errs
	}
	return f, nil
}

func parseRate(s string) (float64, error) {
	r, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, fmt.Errorf("rate %q is not a finite number", s)
	}
	return r, nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}

func validAmount(s string) error {
	if _, err := core.ParseAmount(s); err != nil {
		return errors.New("enter a whole amount, e.g. 1,20,000")
	}
	return nil
}

func validOptionalAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validAmount(s)
}

func validRate(s string) error {
	if r, err := parseRate(s); err != nil || r < 0 {
		return errors.New("enter a yearly rate such as 10.5")
	}
	return nil
}

func validMonths(s string) error {
	if m, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || m <= 0 {
		return errors.New("enter the number of monthly installments")
	}
	return nil
}

// loanForm prompts for every loan field, prefilled from in.
func loanForm(title string, in *loanInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Loan No").Value(&in.LoanNo).Validate(required("Loan No")),
			huh.NewInput().Title("Lender").Value(&in.Lender).Validate(required("Lender")),
			huh.NewInput().Title("Principal").Value(&in.Principal).Validate(validAmount),
			huh.NewInput().Title("Interest rate (% per year)").Value(&in.Rate).Validate(validRate),
			huh.NewInput().Title("Term (months)").Value(&in.Months).Validate(validMonths),
		).Title(title),
		huh.NewGroup(
			huh.NewConfirm().Title("Interest only?").
				Description("The EMI pays interest and the principal is due at the end.").
				Value(&in.InterestOnly),
			huh.NewInput().Title("Monthly EMI").
				Description("Leave blank to calculate it from principal, rate and term.").
				Value(&in.EMI).Validate(validOptionalAmount),
		),
	)
}

// runLoanForm reports an aborted form as cancelled.
func runLoanForm(title string, in *loanInput) error {
	if err := loanForm(title, in).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("cancelled")
		}
		return err
	}
	return nil
}
