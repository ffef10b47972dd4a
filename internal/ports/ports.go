// Package ports declares the interfaces the services depend on, implemented by
// the storage, messaging and sheets adapters.
package ports

import (
	"context"

	"viveka/internal/core"
)

type (
	// CashflowStore persists the singleton cashflow profile. Load on an empty
	// store returns the zero profile.
	CashflowStore interface {
		LoadCashflow(ctx context.Context) (core.CashflowProfile, error)
		SaveCashflow(ctx context.Context, p core.CashflowProfile) error
	}

	// LoanStore persists the whole loan set. SaveLoans replaces every stored
	// loan with loans, in order; it either fully succeeds or leaves the previous
	// set intact.
	LoanStore interface {
		LoadLoans(ctx context.Context) ([]core.Loan, error)
		SaveLoans(ctx context.Context, loans []core.Loan) error
	}

	// Store is the full persistence contract.
	Store interface {
		CashflowStore
		LoanStore
		Ping(ctx context.Context) error
		Close() error
	}

	// LoanEventPublisher announces a loan change after it has been saved.
	LoanEventPublisher interface {
		PublishLoanEvent(ctx context.Context, loanID, action string) error
	}

	// LoanSheetWriter mirrors the loan table somewhere outside the store.
	LoanSheetWriter interface {
		WriteLoans(ctx context.Context, loans []core.Loan) error
	}
)
