package http

import (
	"net/http"

	"viveka/internal/core"
	"viveka/internal/finance"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboard.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetCashflow(w http.ResponseWriter, r *http.Request) {
	p, err := s.cashflow.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cashflowBody(p))
}

func (s *Server) handleSaveCashflow(w http.ResponseWriter, r *http.Request) {
	var p core.CashflowProfile
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.cashflow.Save(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cashflowBody(saved))
}

// cashflowResponse echoes the profile with its derived totals.
type cashflowResponse struct {
	core.CashflowProfile
	TotalFixed    int64 `json:"total_fixed"`
	TotalVariable int64 `json:"total_variable"`
	TotalExpenses int64 `json:"total_expenses"`
	Surplus       int64 `json:"surplus"`
}

func cashflowBody(p core.CashflowProfile) cashflowResponse {
	if p.FixedExpenses == nil {
		p.FixedExpenses = []core.ExpenseItem{}
	}
	if p.VariableExpenses == nil {
		p.VariableExpenses = []core.ExpenseItem{}
	}
	return cashflowResponse{
		CashflowProfile: p,
		TotalFixed:      p.TotalFixed(),
		TotalVariable:   p.TotalVariable(),
		TotalExpenses:   finance.TotalExpenses(p),
		Surplus:         finance.Surplus(p),
	}
}

type emiResponse struct {
	Principal int64   `json:"principal"`
	Rate      float64 `json:"rate"`
	Months    int     `json:"months"`
	EMI       int64   `json:"emi"`
	Interest  int64   `json:"interest"`
	Payable   int64   `json:"total_payable"`
}

func (s *Server) handleEMI(w http.ResponseWriter, r *http.Request) {
	q, err := parseEMIQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	emi := finance.CalculateEMI(q.Principal, q.Rate, q.Months)
	payable := emi * int64(q.Months)
	writeJSON(w, http.StatusOK, emiResponse{
		Principal: q.Principal,
		Rate:      q.Rate,
		Months:    q.Months,
		EMI:       emi,
		Interest:  payable - q.Principal,
		Payable:   payable,
	})
}
