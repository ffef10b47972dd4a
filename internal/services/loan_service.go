package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"viveka/internal/core"
	vlog "viveka/internal/log"
	"viveka/internal/ports"
)

// Loan event actions published after a successful save.
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionArchived  = "archived"
	ActionRestored  = "restored"
	ActionClosed    = "closed"
	ActionPaid      = "paid"
	ActionUndone    = "undone"
	ActionExtraPaid = "extra_paid"
)

// LoanService is the loan lifecycle manager. Every operation loads the full
// loan set, applies one change and saves the set back before publishing.
type LoanService struct {
	store     ports.LoanStore
	publisher ports.LoanEventPublisher
	now       func() time.Time
	newID     func() string
}

// NewLoanService wires the service. publisher may be nil.
func NewLoanService(store ports.LoanStore, publisher ports.LoanEventPublisher) *LoanService {
	return &LoanService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *LoanService) Get(ctx context.Context, id string) (core.Loan, error) {
	loans, err := s.store.LoadLoans(ctx)
	if err != nil {
		return core.Loan{}, fmt.Errorf("load loans: %w", err)
	}
	i, err := indexOf(loans, id)
	if err != nil {
		return core.Loan{}, err
	}
	return loans[i], nil
}

// Create validates fields against every stored loan and appends a fresh ACTIVE
// EMI loan. Validation failures come back as core.ValidationErrors and nothing
// is saved.
func (s *LoanService) Create(ctx context.Context, fields core.LoanFields) (core.Loan, error) {
	loans, err := s.store.LoadLoans(ctx)
	if err != nil {
		return core.Loan{}, fmt.Errorf("load loans: %w", err)
	}

	fields = fields.Trimmed()
	if errs := fields.ValidateAgainst(loans, ""); len(errs) > 0 {
		slog.InfoContext(ctx, "Loan rejected", vlog.FieldOperation, "create", vlog.FieldLoanNo, fields.LoanNo, "errors", len(errs))
		return core.Loan{}, errs
	}

	loan := core.Loan{
		ID:        s.newID(),
		Type:      core.LoanTypeEMI,
		Status:    core.StatusActive,
		CreatedAt: s.now().UTC(),
	}
	fields.Apply(&loan)

	if err := s.store.SaveLoans(ctx, append(loans, loan)); err != nil {
		return core.Loan{}, fmt.Errorf("save loans: %w", err)
	}

	slog.InfoContext(ctx, "Loan created", vlog.FieldLoanID, loan.ID, vlog.FieldLoanNo, loan.LoanNo, "lender", loan.Lender)
	s.publish(ctx, loan.ID, ActionCreated)
	return loan, nil
}

// Update replaces the editable fields of a loan. Progress, archive state and
// timestamps are kept.
func (s *LoanService) Update(ctx context.Context, id string, fields core.LoanFields) (core.Loan, error) {
	return s.mutate(ctx, id, ActionUpdated, func(loans []core.Loan, l *core.Loan) error {
		fields = fields.Trimmed()
		if errs := fields.ValidateAgainst(loans, id); len(errs) > 0 {
			return errs
		}
		fields.Apply(l)
		return nil
	})
}

// Archive hides a loan from active views. Re-archiving refreshes the timestamp.
func (s *LoanService) Archive(ctx context.Context, id string) (core.Loan, error) {
	return s.mutate(ctx, id, ActionArchived, func(_ []core.Loan, l *core.Loan) error {
		at := s.now().UTC()
		l.Archived = true
		l.ArchivedAt = &at
		return nil
	})
}

// Restore un-archives an ACTIVE loan. Closed loans stay archived.
func (s *LoanService) Restore(ctx context.Context, id string) (core.Loan, error) {
	return s.mutate(ctx, id, ActionRestored, func(_ []core.Loan, l *core.Loan) error {
		if l.IsClosed() {
			return core.ErrLoanClosed
		}
		at := s.now().UTC()
		l.Archived = false
		l.RestoredAt = &at
		return nil
	})
}

// Close moves a loan to the terminal CLOSED state, which also archives it.
func (s *LoanService) Close(ctx context.Context, id string) (core.Loan, error) {
	return s.mutate(ctx, id, ActionClosed, func(_ []core.Loan, l *core.Loan) error {
		if l.IsClosed() {
			return core.ErrLoanClosed
		}
		at := s.now().UTC()
		l.Status = core.StatusClosed
		l.Archived = true
		l.ClosedAt = &at
		if l.ArchivedAt == nil {
			l.ArchivedAt = &at
		}
		return nil
	})
}

// MarkPaid records this month's installment. It is allowed once per calendar
// month of asOf and only while installments remain.
func (s *LoanService) MarkPaid(ctx context.Context, id string, asOf time.Time) (core.Loan, error) {
	month := core.MonthKey(asOf)
	return s.mutate(ctx, id, ActionPaid, func(_ []core.Loan, l *core.Loan) error {
		switch {
		case l.IsClosed():
			return core.ErrLoanClosed
		case l.LastPaidMonth == month:
			return core.ErrAlreadyPaidThisMonth
		case l.IsComplete():
			return core.ErrLoanComplete
		}
		l.MonthsPaid++
		l.LastPaidMonth = month
		return nil
	})
}

// UndoPaid reverts a MarkPaid made in the same calendar month as asOf.
func (s *LoanService) UndoPaid(ctx context.Context, id string, asOf time.Time) (core.Loan, error) {
	month := core.MonthKey(asOf)
	return s.mutate(ctx, id, ActionUndone, func(_ []core.Loan, l *core.Loan) error {
		if l.LastPaidMonth != month {
			return core.ErrNothingToUndo
		}
		l.MonthsPaid = max(l.MonthsPaid-1, 0)
		l.LastPaidMonth = ""
		return nil
	})
}

// SetExtraPaid replaces the amount paid outside scheduled installments.
func (s *LoanService) SetExtraPaid(ctx context.Context, id string, amount int64) (core.Loan, error) {
	if amount < 0 {
		return core.Loan{}, core.ValidationErrors{{Field: "extra_paid", Message: "Extra paid cannot be negative"}}
	}
	return s.mutate(ctx, id, ActionExtraPaid, func(_ []core.Loan, l *core.Loan) error {
		l.ExtraPaid = amount
		return nil
	})
}

// mutate runs change against the stored copy of loan id and saves the whole
// set when change succeeds. The loan set is left untouched on any error.
func (s *LoanService) mutate(ctx context.Context, id, action string, change func([]core.Loan, *core.Loan) error) (core.Loan, error) {
	loans, err := s.store.LoadLoans(ctx)
	if err != nil {
		return core.Loan{}, fmt.Errorf("load loans: %w", err)
	}
	i, err := indexOf(loans, id)
	if err != nil {
		return core.Loan{}, err
	}

	if err := change(loans, &loans[i]); err != nil {
		slog.InfoContext(ctx, "Loan change refused", vlog.NewFields().WithOperation(action).WithLoan(id, "").WithError(err).ToSlice()...)
		var verrs core.ValidationErrors
		if errors.As(err, &verrs) {
			return core.Loan{}, verrs
		}
		return core.Loan{}, fmt.Errorf("%s loan %s: %w", action, id, err)
	}

	if err := s.store.SaveLoans(ctx, loans); err != nil {
		return core.Loan{}, fmt.Errorf("save loans: %w", err)
	}

	loan := loans[i]
	slog.InfoContext(ctx, "Loan updated",
		vlog.FieldOperation, action,
		vlog.FieldLoanID, loan.ID,
		vlog.FieldLoanNo, loan.LoanNo,
		"months_paid", loan.MonthsPaid,
		"archived", loan.Archived)
	s.publish(ctx, loan.ID, action)
	return loan, nil
}

func (s *LoanService) publish(ctx context.Context, loanID, action string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping loan event", vlog.FieldLoanID, loanID, "action", action)
		return
	}
	if err := s.publisher.PublishLoanEvent(ctx, loanID, action); err != nil {
		// The change is already saved.
		slog.ErrorContext(ctx, "Failed to publish loan event", vlog.FieldLoanID, loanID, "action", action, vlog.FieldError, err)
	}
}

func indexOf(loans []core.Loan, id string) (int, error) {
	for i, l := range loans {
		if l.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("loan %s: %w", id, core.ErrLoanNotFound)
}
