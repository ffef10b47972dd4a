package services

import (
	"context"
	"fmt"

	"viveka/internal/core"
	vlog "viveka/internal/log"
	"viveka/internal/ports"
)

type CashflowService struct {
	store ports.CashflowStore
}

func NewCashflowService(store ports.CashflowStore) *CashflowService {
	return &CashflowService{store: store}
}

func (s *CashflowService) Get(ctx context.Context) (core.CashflowProfile, error) {
	p, err := s.store.LoadCashflow(ctx)
	if err != nil {
		return core.CashflowProfile{}, fmt.Errorf("load cashflow: %w", err)
	}
	return p, nil
}

// Save validates the profile and replaces the stored one wholesale.
func (s *CashflowService) Save(ctx context.Context, p core.CashflowProfile) (core.CashflowProfile, error) {
	p = p.Trimmed()
	if errs := p.Validate(); len(errs) > 0 {
		return core.CashflowProfile{}, errs
	}
	if err := s.store.SaveCashflow(ctx, p); err != nil {
		return core.CashflowProfile{}, fmt.Errorf("save cashflow: %w", err)
	}
	vlog.ForComponent(ctx, vlog.ComponentCashflow).InfoContext(ctx, "Cashflow replaced",
		"income", p.MonthlyIncome,
		"fixed_total", p.TotalFixed(),
		"variable_total", p.TotalVariable())
	return p, nil
}
