package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"viveka/internal/core"
	"viveka/internal/finance"
)

// loanListResponse carries the filtered loans and their totals.
type loanListResponse struct {
	Filter  string           `json:"filter"`
	Loans   []core.LoanView  `json:"loans"`
	Summary core.LoanSummary `json:"summary"`
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = finance.FilterActive
	}
	loans, err := s.dashboard.LoanList(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	today := s.now()
	views := make([]core.LoanView, len(loans))
	for i, l := range loans {
		views[i] = finance.View(l, today)
	}
	writeJSON(w, http.StatusOK, loanListResponse{
		Filter:  filter,
		Loans:   views,
		Summary: finance.SummarizeLoans(loans),
	})
}

func (s *Server) handleLoanOverview(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseAsOf(r, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ov, err := s.dashboard.LoanOverview(r.Context(), asOf)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var fields core.LoanFields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, r, err)
		return
	}
	loan, err := s.loans.Create(r.Context(), fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/loans/"+loan.ID)
	writeJSON(w, http.StatusCreated, finance.View(loan, s.now()))
}

func (s *Server) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := s.loans.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, finance.View(loan, s.now()))
}

func (s *Server) handleUpdateLoan(w http.ResponseWriter, r *http.Request) {
	var fields core.LoanFields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, r, err)
		return
	}
	loan, err := s.loans.Update(r.Context(), mux.Vars(r)["id"], fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, finance.View(loan, s.now()))
}

// lifecycle adapts archive, restore and close, which take only the loan id.
func (s *Server) lifecycle(op func(context.Context, string) (core.Loan, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loan, err := op(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, finance.View(loan, s.now()))
	}
}

// monthly adapts the paid toggle, which is keyed to the month of as_of.
func (s *Server) monthly(op func(context.Context, string, time.Time) (core.Loan, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asOf, err := parseAsOf(r, s.now())
		if err != nil {
			writeError(w, r, err)
			return
		}
		loan, err := op(r.Context(), mux.Vars(r)["id"], asOf)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, finance.View(loan, asOf))
	}
}

func (s *Server) handleSetExtraPaid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount *int64 `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Amount == nil {
		writeError(w, r, core.ValidationErrors{{Field: "amount", Message: "Amount is required"}})
		return
	}
	loan, err := s.loans.SetExtraPaid(r.Context(), mux.Vars(r)["id"], *req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, finance.View(loan, s.now()))
}
