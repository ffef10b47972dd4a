package services

import (
	"context"
	"fmt"
	"time"

	"viveka/internal/core"
	"viveka/internal/finance"
	vlog "viveka/internal/log"
	"viveka/internal/ports"
)

// DashboardService serves read-only views. Every call recomputes from the
// stored snapshot.
type DashboardService struct {
	cashflow ports.CashflowStore
	loans    ports.LoanStore
}

func NewDashboardService(cashflow ports.CashflowStore, loans ports.LoanStore) *DashboardService {
	return &DashboardService{cashflow: cashflow, loans: loans}
}

func (s *DashboardService) Summary(ctx context.Context) (core.DashboardSummary, error) {
	p, err := s.cashflow.LoadCashflow(ctx)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("load cashflow: %w", err)
	}
	loans, err := s.loans.LoadLoans(ctx)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("load loans: %w", err)
	}
	return finance.Summarize(p, loans), nil
}

// LoanList returns the loans matching filter. An empty filter means active.
func (s *DashboardService) LoanList(ctx context.Context, filter string) ([]core.Loan, error) {
	if filter == "" {
		filter = finance.FilterActive
	}
	if !finance.ValidFilter(filter) {
		return nil, core.ValidationErrors{{Field: "filter", Message: "Unknown filter " + filter}}
	}
	loans, err := s.loans.LoadLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	filtered := finance.FilterLoans(loans, filter)
	vlog.ForComponent(ctx, vlog.ComponentLoan).DebugContext(ctx, "Loan list filtered",
		vlog.FieldFilter, filter,
		"matched", len(filtered),
		"total", len(loans))
	return filtered, nil
}

// LoanOverview reports progress of the active EMI loans as of asOf.
func (s *DashboardService) LoanOverview(ctx context.Context, asOf time.Time) (core.LoanOverview, error) {
	loans, err := s.loans.LoadLoans(ctx)
	if err != nil {
		return core.LoanOverview{}, fmt.Errorf("load loans: %w", err)
	}
	return finance.Overview(loans, asOf), nil
}

// AllLoans returns every stored loan in saved order.
func (s *DashboardService) AllLoans(ctx context.Context) ([]core.Loan, error) {
	loans, err := s.loans.LoadLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	return loans, nil
}
