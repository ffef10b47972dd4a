// Package memory is an in-process persistence store used by tests and the
// memory backend. Nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"viveka/internal/core"
)

type Store struct {
	mu       sync.Mutex
	cashflow core.CashflowProfile
	loans    []core.Loan
}

func New() *Store {
	return &Store{}
}

// NewWithLoans returns a store seeded with a copy of loans.
func NewWithLoans(loans []core.Loan) *Store {
	return &Store{loans: core.CloneLoans(loans)}
}

func (s *Store) LoadCashflow(_ context.Context) (core.CashflowProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cashflow.Clone(), nil
}

func (s *Store) SaveCashflow(_ context.Context, p core.CashflowProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cashflow = p.Clone()
	return nil
}

// LoadLoans returns a deep copy so callers may mutate freely until they save.
func (s *Store) LoadLoans(_ context.Context) ([]core.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := core.CloneLoans(s.loans)
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (s *Store) SaveLoans(_ context.Context, loans []core.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans = core.CloneLoans(loans)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
