package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"viveka/internal/core"
	"viveka/internal/storage/memory"
)

type fakePublisher struct {
	events []string
	err    error
}

func (p *fakePublisher) PublishLoanEvent(_ context.Context, loanID, action string) error {
	p.events = append(p.events, action+":"+loanID)
	return p.err
}

// failingStore fails every save after loading from the wrapped store.
type failingStore struct {
	*memory.Store
}

func (failingStore) SaveLoans(context.Context, []core.Loan) error {
	return &core.StorageError{Op: "save loans", Err: errors.New("disk full")}
}

var october = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestLoanService(t *testing.T) (*LoanService, *memory.Store, *fakePublisher) {
	t.Helper()
	store := memory.New()
	pub := &fakePublisher{}
	svc := NewLoanService(store, pub)
	svc.now = func() time.Time { return october }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("loan-%d", n)
	}
	return svc, store, pub
}

func loanFields(no string) core.LoanFields {
	return core.LoanFields{LoanNo: no, Lender: "HDFC", Principal: 120000, InterestRate: 12, TotalMonths: 12, EMI: 10662}
}

func mustCreate(t *testing.T, svc *LoanService, no string) core.Loan {
	t.Helper()
	l, err := svc.Create(context.Background(), loanFields(no))
	if err != nil {
		t.Fatalf("create %s: %v", no, err)
	}
	return l
}

func TestCreateLoan(t *testing.T) {
	svc, store, pub := newTestLoanService(t)

	f := loanFields("  HDFC-1 ")
	f.Lender = " HDFC Bank "
	l, err := svc.Create(context.Background(), f)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.ID != "loan-1" || l.LoanNo != "HDFC-1" || l.Lender != "HDFC Bank" {
		t.Fatalf("unexpected loan %+v", l)
	}
	if l.Type != core.LoanTypeEMI || l.Status != core.StatusActive || l.Archived || l.MonthsPaid != 0 || l.ExtraPaid != 0 {
		t.Fatalf("unexpected initial state %+v", l)
	}
	if !l.CreatedAt.Equal(october) {
		t.Fatalf("unexpected created_at %s", l.CreatedAt)
	}

	loans, _ := store.LoadLoans(context.Background())
	if len(loans) != 1 {
		t.Fatalf("expected one stored loan, got %d", len(loans))
	}
	if len(pub.events) != 1 || pub.events[0] != "created:loan-1" {
		t.Fatalf("unexpected events %v", pub.events)
	}
}

func TestCreateRejectsDuplicateLoanNo(t *testing.T) {
	svc, store, pub := newTestLoanService(t)
	mustCreate(t, svc, "HDFC-1")

	_, err := svc.Create(context.Background(), loanFields("hdfc-1"))
	var verrs core.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 1 || verrs[0].Message != "Loan No already exists" {
		t.Fatalf("expected duplicate validation error, got %v", err)
	}

	loans, _ := store.LoadLoans(context.Background())
	if len(loans) != 1 {
		t.Fatalf("loan set changed: %d loans", len(loans))
	}
	if len(pub.events) != 1 {
		t.Fatalf("rejected create published an event: %v", pub.events)
	}
}

func TestCreateCollectsAllValidationErrors(t *testing.T) {
	svc, _, _ := newTestLoanService(t)
	_, err := svc.Create(context.Background(), core.LoanFields{InterestRate: -1})
	var verrs core.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 6 {
		t.Fatalf("expected 6 validation errors, got %v", err)
	}
}

func TestUpdateLoan(t *testing.T) {
	svc, _, _ := newTestLoanService(t)
	ctx := context.Background()
	a := mustCreate(t, svc, "A-1")
	mustCreate(t, svc, "B-1")

	if _, err := svc.MarkPaid(ctx, a.ID, october); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	f := loanFields("a-1")
	f.EMI = 11000
	f.InterestOnly = true
	got, err := svc.Update(ctx, a.ID, f)
	if err != nil {
		t.Fatalf("update keeping own number: %v", err)
	}
	if got.EMI != 11000 || !got.InterestOnly || got.LoanNo != "a-1" {
		t.Fatalf("fields not updated: %+v", got)
	}
	if got.MonthsPaid != 1 || got.LastPaidMonth != "2026-10" || !got.CreatedAt.Equal(a.CreatedAt) {
		t.Fatalf("update touched progress: %+v", got)
	}

	_, err = svc.Update(ctx, a.ID, loanFields("B-1"))
	var verrs core.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	stored, _ := svc.Get(ctx, a.ID)
	if stored.LoanNo != "a-1" {
		t.Fatalf("rejected edit was applied: %+v", stored)
	}
}

func TestUnknownLoan(t *testing.T) {
	svc, _, _ := newTestLoanService(t)
	ctx := context.Background()

	ops := map[string]func() error{
		"get":     func() error { _, err := svc.Get(ctx, "nope"); return err },
		"update":  func() error { _, err := svc.Update(ctx, "nope", loanFields("X")); return err },
		"archive": func() error { _, err := svc.Archive(ctx, "nope"); return err },
		"restore": func() error { _, err := svc.Restore(ctx, "nope"); return err },
		"close":   func() error { _, err := svc.Close(ctx, "nope"); return err },
		"pay":     func() error { _, err := svc.MarkPaid(ctx, "nope", october); return err },
		"undo":    func() error { _, err := svc.UndoPaid(ctx, "nope", october); return err },
		"extra":   func() error { _, err := svc.SetExtraPaid(ctx, "nope", 10); return err },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, core.ErrLoanNotFound) {
			t.Errorf("%s: expected not found, got %v", name, err)
		}
	}
}

func TestArchiveIsIdempotent(t *testing.T) {
	svc, _, _ := newTestLoanService(t)
	ctx := context.Background()
	l := mustCreate(t, svc, "A-1")

	first, err := svc.Archive(ctx, l.ID)
	if err != nil || !first.Archived || first.ArchivedAt == nil {
		t.Fatalf("archive: %+v err=%v", first, err)
	}

	later := october.Add(time.Hour)
	svc.now = func() time.Time { return later }
	second, err := svc.Archive(ctx, l.ID)
	if err != nil {
		t.Fatalf("re-archive: %v", err)
	}
	if !second.Archived || second.Status != core.StatusActive || !second.ArchivedAt.Equal(later) {
		t.Fatalf("unexpected re-archive state %+v", second)
	}
}

func TestRestore(t *testing.T) {
	svc, _, _ := newTestLoanService(t)
	ctx := context.Background()
	l := mustCreate(t, svc, "A-1")

	if _, err := svc.Archive(ctx, l.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	got, err := svc.Restore(ctx, l.ID)
	if err != nil || got.Archived || got.RestoredAt == nil {
		t.Fatalf("restore: %+v err=%v", got, err)
	}
}

func TestCloseIsTerminal(t *testing.T) {
	svc, _, pub := newTestLoanService(t)
	ctx := context.Background()
	l := mustCreate(t, svc, "A-1")

	closed, err := svc.Close(ctx, l.ID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != core.StatusClosed || !closed.Archived || closed.ClosedAt == nil || closed.ArchivedAt == nil {
		t.Fatalf("unexpected closed loan %+v", closed)
	}

	if _, err := svc.Restore(ctx, l.ID); !errors.Is(err, core.ErrLoanClosed) {
		t.Fatalf("restore closed: expected ErrLoanClosed, got %v", err)
	}
	if _, err := svc.MarkPaid(ctx, l.ID, october); !errors.Is(err, core.ErrLoanClosed) {
		t.Fatalf("pay closed: expected ErrLoanClosed, got %v", err)
	}
	if _, err := svc.Close(ctx, l.ID); !errors.Is(err, core.ErrLoanClosed) {
		t.Fatalf("close twice: expected ErrLoanClosed, got %v", err)
	}
	if last := pub.events[len(pub.events)-1]; last != "closed:"+l.ID {
		t.Fatalf("unexpected last event %q", last)
	}
}

func TestMarkPaidOncePerMonth(t *testing.T) {
	svc, _, _ := newTestLoanService(t)
	ctx := context.Background()
	l := mustCreate(t, svc, "A-1")

	got, err := svc.MarkPaid(ctx, l.ID, october)
	if err != nil || got.MonthsPaid != 1 || got.LastPaidMonth != "2026-10" {
		t.Fatalf("mark paid: %+v err=%v", got, err)
	}

	_, err = svc.MarkPaid(ctx, l.ID, october.AddDate(0, 0, 10))
	if !errors.Is(err, core.ErrAlreadyPaidThisMonth) || !core.IsStateConflict(err) {
		t.Fatalf("expected already paid, got %v", err)
	}

	got, err = svc.MarkPaid(ctx, l.ID, october.AddDate(0, 1, 0))
	if err != nil || got.MonthsPaid != 2 || got.LastPaidMonth != "2026-11" {
		t.Fatalf("next month: %+v err=%v", got, err)
	}
}

func TestMarkPaidOnCompletedLoan(t *testing.T) {
	store := memory.NewWithLoans([]core.Loan{{
		ID: "done", LoanNo: "D-1", Lender: "x", Type: core.LoanTypeEMI, Status: core.StatusActive,
		Principal: 100, TotalMonths: 10, MonthsPaid: 10, EMI: 10, LastPaidMonth: "2026-09",
	}})
	svc := NewLoanService(store, nil)

	_, err := svc.MarkPaid(context.Background(), "done", october)
	if !errors.Is(err, core.ErrLoanComplete) {
		t.Fatalf("expected loan complete, got %v", err)
	}
	l, _ := svc.Get(context.Background(), "done")
	if l.MonthsPaid != 10 || l.LastPaidMonth != "2026-09" {
		t.Fatalf("refused pay changed state: %+v", l)
	}
}

func TestMarkThenUndoRestoresState(t *testing.T) {
	store := memory.NewWithLoans([]core.Loan{{
		ID: "x", LoanNo: "X-1", Lender: "x", Type: core.LoanTypeEMI, Status: core.StatusActive,
		Principal: 100, TotalMonths: 10, MonthsPaid: 4, EMI: 10, LastPaidMonth: "2026-09",
	}})
	svc := NewLoanService(store, nil)
	ctx := context.Background()

	before, _ := svc.Get(ctx, "x")
	if _, err := svc.MarkPaid(ctx, "x", october); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	after, err := svc.UndoPaid(ctx, "x", october)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if after.MonthsPaid != before.MonthsPaid {
		t.Fatalf("months paid %d, want %d", after.MonthsPaid, before.MonthsPaid)
	}
	// Undo clears the month key so this month can be paid again.
	if after.LastPaidMonth != "" {
		t.Fatalf("expected cleared month key, got %q", after.LastPaidMonth)
	}
	if _, err := svc.MarkPaid(ctx, "x", october); err != nil {
		t.Fatalf("re-pay after undo: %v", err)
	}
}

func TestUndoWithoutPaymentThisMonth(t *testing.T) {
	svc, _, _ := newTestLoanService(t)
	ctx := context.Background()
	l := mustCreate(t, svc, "A-1")

	if _, err := svc.UndoPaid(ctx, l.ID, october); !errors.Is(err, core.ErrNothingToUndo) {
		t.Fatalf("expected nothing to undo, got %v", err)
	}

	if _, err := svc.MarkPaid(ctx, l.ID, october); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if _, err := svc.UndoPaid(ctx, l.ID, october.AddDate(0, 1, 0)); !errors.Is(err, core.ErrNothingToUndo) {
		t.Fatalf("undo next month: expected nothing to undo, got %v", err)
	}
}

func TestUndoNeverGoesNegative(t *testing.T) {
	store := memory.NewWithLoans([]core.Loan{{
		ID: "x", LoanNo: "X-1", Lender: "x", Type: core.LoanTypeEMI, Status: core.StatusActive,
		Principal: 100, TotalMonths: 10, EMI: 10, LastPaidMonth: "2026-10",
	}})
	svc := NewLoanService(store, nil)
	got, err := svc.UndoPaid(context.Background(), "x", october)
	if err != nil || got.MonthsPaid != 0 {
		t.Fatalf("undo: %+v err=%v", got, err)
	}
}

func TestSetExtraPaid(t *testing.T) {
	svc, _, _ := newTestLoanService(t)
	ctx := context.Background()
	l := mustCreate(t, svc, "A-1")

	got, err := svc.SetExtraPaid(ctx, l.ID, 2500)
	if err != nil || got.ExtraPaid != 2500 {
		t.Fatalf("set extra: %+v err=%v", got, err)
	}
	var verrs core.ValidationErrors
	if _, err := svc.SetExtraPaid(ctx, l.ID, -1); !errors.As(err, &verrs) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStorageFailureIsSurfaced(t *testing.T) {
	mem := memory.NewWithLoans([]core.Loan{{ID: "x", LoanNo: "X-1", Lender: "x", Type: core.LoanTypeEMI, Status: core.StatusActive, Principal: 1, TotalMonths: 2, EMI: 1}})
	pub := &fakePublisher{}
	svc := NewLoanService(failingStore{mem}, pub)

	_, err := svc.MarkPaid(context.Background(), "x", october)
	var se *core.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected storage error, got %v", err)
	}
	loans, _ := mem.LoadLoans(context.Background())
	if loans[0].MonthsPaid != 0 {
		t.Fatal("failed save mutated the stored set")
	}
	if len(pub.events) != 0 {
		t.Fatalf("failed save published %v", pub.events)
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	svc, _, pub := newTestLoanService(t)
	pub.err = errors.New("broker down")
	if _, err := svc.Create(context.Background(), loanFields("A-1")); err != nil {
		t.Fatalf("create should succeed when publish fails: %v", err)
	}
}
