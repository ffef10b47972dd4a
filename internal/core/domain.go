package core

import (
	"math"
	"strings"
	"time"
)

const (
	LoanTypeEMI        LoanType = "EMI"
	LoanTypeSettlement LoanType = "SETTLEMENT"

	StatusActive LoanStatus = "ACTIVE"
	StatusClosed LoanStatus = "CLOSED"
)

// MonthKeyLayout is the layout of Loan.LastPaidMonth.
const MonthKeyLayout = "2006-01"

type (
	LoanType   string
	LoanStatus string

	ExpenseItem struct {
		Name   string `json:"name"`
		Amount int64  `json:"amount"`
	}

	// CashflowProfile is replaced wholesale on every save.
	CashflowProfile struct {
		MonthlyIncome    int64         `json:"monthly_income"`
		FixedExpenses    []ExpenseItem `json:"fixed_expenses"`
		VariableExpenses []ExpenseItem `json:"variable_expenses"`
	}

	Loan struct {
		ID            string     `json:"id"`
		LoanNo        string     `json:"loan_no"`
		Lender        string     `json:"lender"`
		Type          LoanType   `json:"type"`
		Status        LoanStatus `json:"status"`
		Principal     int64      `json:"principal"`
		InterestRate  float64    `json:"interest_rate"`
		TotalMonths   int        `json:"total_months"`
		MonthsPaid    int        `json:"months_paid"`
		EMI           int64      `json:"emi"`
		ExtraPaid     int64      `json:"extra_paid"`
		InterestOnly  bool       `json:"interest_only"`
		Archived      bool       `json:"archived"`
		LastPaidMonth string     `json:"last_paid_month"`
		CreatedAt     time.Time  `json:"created_at"`
		ArchivedAt    *time.Time `json:"archived_at,omitempty"`
		RestoredAt    *time.Time `json:"restored_at,omitempty"`
		ClosedAt      *time.Time `json:"closed_at,omitempty"`
	}

	// LoanFields is the user-editable subset of a Loan, shared by create and edit.
	LoanFields struct {
		LoanNo       string  `json:"loan_no"`
		Lender       string  `json:"lender"`
		Principal    int64   `json:"principal"`
		InterestRate float64 `json:"interest_rate"`
		TotalMonths  int     `json:"total_months"`
		EMI          int64   `json:"emi"`
		InterestOnly bool    `json:"interest_only"`
	}
)

func (t LoanType) IsValid() bool {
	return t == LoanTypeEMI || t == LoanTypeSettlement
}

func (s LoanStatus) IsValid() bool {
	return s == StatusActive || s == StatusClosed
}

// MonthKey returns the YYYY-MM key used to gate the monthly paid toggle.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// NormalizeLoanNo is the comparison form of a loan number.
func NormalizeLoanNo(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Normalize fills defaults for records written by older versions.
// A closed loan is always archived.
func (l *Loan) Normalize() {
	if l.Type == "" {
		l.Type = LoanTypeEMI
	}
	if l.Status == "" {
		l.Status = StatusActive
	}
	if l.Status == StatusClosed {
		l.Archived = true
	}
	if l.MonthsPaid < 0 {
		l.MonthsPaid = 0
	}
}

func (l Loan) IsClosed() bool {
	return l.Status == StatusClosed
}

// IsComplete reports whether every scheduled installment has been paid.
func (l Loan) IsComplete() bool {
	return l.MonthsPaid >= l.TotalMonths
}

// PaidInMonth reports whether the installment for the month of t was marked paid.
func (l Loan) PaidInMonth(t time.Time) bool {
	return l.LastPaidMonth != "" && l.LastPaidMonth == MonthKey(t)
}

// Trimmed returns a copy with surrounding whitespace removed from text fields.
func (f LoanFields) Trimmed() LoanFields {
	f.LoanNo = strings.TrimSpace(f.LoanNo)
	f.Lender = strings.TrimSpace(f.Lender)
	return f
}

// Validate checks the field rules shared by create and edit. Uniqueness of the
// loan number is checked by ValidateAgainst because it needs the loan set.
func (f LoanFields) Validate() ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(f.LoanNo) == "" {
		errs = append(errs, ValidationError{Field: "loan_no", Message: "Loan No is required"})
	}
	if strings.TrimSpace(f.Lender) == "" {
		errs = append(errs, ValidationError{Field: "lender", Message: "Lender name is required"})
	}
	if f.Principal <= 0 {
		errs = append(errs, ValidationError{Field: "principal", Message: "Principal must be greater than 0"})
	}
	switch {
	case math.IsNaN(f.InterestRate) || math.IsInf(f.InterestRate, 0):
		errs = append(errs, ValidationError{Field: "interest_rate", Message: "Interest rate must be a finite number"})
	case f.InterestRate < 0:
		errs = append(errs, ValidationError{Field: "interest_rate", Message: "Interest rate cannot be negative"})
	}
	if f.TotalMonths <= 0 {
		errs = append(errs, ValidationError{Field: "total_months", Message: "Total months must be greater than 0"})
	}
	if f.EMI <= 0 {
		errs = append(errs, ValidationError{Field: "emi", Message: "Monthly EMI must be greater than 0"})
	}
	return errs
}

// ValidateAgainst runs Validate and additionally rejects a loan number already
// used by any loan in existing other than the one identified by excludeID.
func (f LoanFields) ValidateAgainst(existing []Loan, excludeID string) ValidationErrors {
	errs := f.Validate()
	if strings.TrimSpace(f.LoanNo) != "" && LoanNoExists(existing, f.LoanNo, excludeID) {
		errs = append(errs, ValidationError{Field: "loan_no", Message: "Loan No already exists"})
	}
	return errs
}

// LoanNoExists compares case-insensitively and skips the loan with excludeID.
func LoanNoExists(loans []Loan, loanNo, excludeID string) bool {
	want := NormalizeLoanNo(loanNo)
	for _, l := range loans {
		if excludeID != "" && l.ID == excludeID {
			continue
		}
		if NormalizeLoanNo(l.LoanNo) == want {
			return true
		}
	}
	return false
}

// Apply copies the editable fields onto l. Payment progress, archive state and
// timestamps are left untouched.
func (f LoanFields) Apply(l *Loan) {
	f = f.Trimmed()
	l.LoanNo = f.LoanNo
	l.Lender = f.Lender
	l.Principal = f.Principal
	l.InterestRate = f.InterestRate
	l.TotalMonths = f.TotalMonths
	l.EMI = f.EMI
	l.InterestOnly = f.InterestOnly
}

// TotalFixed returns the sum of the fixed expense amounts.
func (p CashflowProfile) TotalFixed() int64 {
	return sumItems(p.FixedExpenses)
}

// TotalVariable returns the sum of the variable expense amounts.
func (p CashflowProfile) TotalVariable() int64 {
	return sumItems(p.VariableExpenses)
}

func sumItems(items []ExpenseItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Amount
	}
	return total
}

func (p CashflowProfile) Validate() ValidationErrors {
	var errs ValidationErrors
	if p.MonthlyIncome < 0 {
		errs = append(errs, ValidationError{Field: "monthly_income", Message: "Monthly income cannot be negative"})
	}
	errs = append(errs, validateItems("fixed_expenses", p.FixedExpenses)...)
	errs = append(errs, validateItems("variable_expenses", p.VariableExpenses)...)
	return errs
}

func validateItems(field string, items []ExpenseItem) ValidationErrors {
	var errs ValidationErrors
	for i, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			errs = append(errs, ValidationError{Field: field, Message: "Expense name is required (row " + itoa(i+1) + ")"})
		}
		if it.Amount < 0 {
			errs = append(errs, ValidationError{Field: field, Message: "Expense amount cannot be negative (row " + itoa(i+1) + ")"})
		}
	}
	return errs
}

// Clone returns a deep copy so callers cannot alias stored slices.
func (p CashflowProfile) Clone() CashflowProfile {
	out := CashflowProfile{MonthlyIncome: p.MonthlyIncome}
	out.FixedExpenses = append([]ExpenseItem{}, p.FixedExpenses...)
	out.VariableExpenses = append([]ExpenseItem{}, p.VariableExpenses...)
	return out
}

// Trimmed strips whitespace from expense names.
func (p CashflowProfile) Trimmed() CashflowProfile {
	out := p.Clone()
	for i := range out.FixedExpenses {
		out.FixedExpenses[i].Name = strings.TrimSpace(out.FixedExpenses[i].Name)
	}
	for i := range out.VariableExpenses {
		out.VariableExpenses[i].Name = strings.TrimSpace(out.VariableExpenses[i].Name)
	}
	return out
}

// Clone returns a copy of l whose time pointers are not shared.
func (l Loan) Clone() Loan {
	l.ArchivedAt = cloneTime(l.ArchivedAt)
	l.RestoredAt = cloneTime(l.RestoredAt)
	l.ClosedAt = cloneTime(l.ClosedAt)
	return l
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// CloneLoans deep-copies a loan slice.
func CloneLoans(loans []Loan) []Loan {
	out := make([]Loan, len(loans))
	for i, l := range loans {
		out[i] = l.Clone()
	}
	return out
}
