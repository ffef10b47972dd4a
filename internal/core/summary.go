package core

import "time"

// LoanFigures are the amounts derived from one loan's schedule and payments.
type LoanFigures struct {
	Principal int64 `json:"principal"`
	Interest  int64 `json:"interest"`
	Payable   int64 `json:"total_payable"`
	Paid      int64 `json:"paid"`
	Balance   int64 `json:"balance"`
	Pending   int   `json:"pending_emis"`
}

// LoanSummary totals LoanFigures over a loan set.
type LoanSummary struct {
	Count     int   `json:"count"`
	Principal int64 `json:"principal"`
	Interest  int64 `json:"interest"`
	Payable   int64 `json:"total_payable"`
	Paid      int64 `json:"paid"`
	Balance   int64 `json:"balance"`
	Pending   int   `json:"pending_emis"`
}

// LoanView is a loan with its progress figures for a given day.
type LoanView struct {
	Loan            Loan        `json:"loan"`
	Progress        float64     `json:"progress"`
	ProgressPercent int         `json:"progress_percent"`
	ProgressBand    string      `json:"progress_band"`
	MonthsLeft      int         `json:"months_left"`
	CloseBy         string      `json:"close_by"`
	PaidThisMonth   bool        `json:"paid_this_month"`
	Figures         LoanFigures `json:"figures"`
}

// LoanOverview is the progress listing of active EMI loans, closest to
// completion first, with totals.
type LoanOverview struct {
	AsOf    time.Time   `json:"as_of"`
	Loans   []LoanView  `json:"loans"`
	Summary LoanSummary `json:"summary"`
}

// NextClosing names the active loan closest to completion and the monthly
// amount its completion frees.
type NextClosing struct {
	LoanID     string `json:"loan_id"`
	LoanNo     string `json:"loan_no"`
	Lender     string `json:"lender"`
	MonthsLeft int    `json:"months_left"`
	FreesEMI   int64  `json:"frees_emi"`
}

// DashboardSummary is the read-only aggregation over cashflow and loans.
type DashboardSummary struct {
	Income             int64   `json:"income"`
	FixedExpenses      int64   `json:"fixed_expenses"`
	VariableExpenses   int64   `json:"variable_expenses"`
	TotalExpenses      int64   `json:"total_expenses"`
	Surplus            int64   `json:"surplus"`
	LivingCostPct      float64 `json:"living_cost_pct"`
	DebtPressurePct    float64 `json:"debt_pressure_pct"`
	SavingsCapacityPct float64 `json:"savings_capacity_pct"`
	ActiveEMICount     int     `json:"active_emi_count"`
	TotalEMI           int64   `json:"total_emi"`
	FreeCashAfterEMI   int64   `json:"free_cash_after_emi"`
	RiskScore          int     `json:"risk_score"`

	RiskCategory         string       `json:"risk_category"`
	LivingCostLabel      string       `json:"living_cost_label"`
	DebtPressureLabel    string       `json:"debt_pressure_label"`
	SavingsCapacityLabel string       `json:"savings_capacity_label"`
	SurplusStatus        string       `json:"surplus_status"`
	CashflowSignal       string       `json:"cashflow_signal"`
	NextClosing          *NextClosing `json:"next_closing,omitempty"`
}
