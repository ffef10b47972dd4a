package memory

import (
	"context"
	"testing"

	"viveka/internal/core"
)

func TestEmptyStoreDefaults(t *testing.T) {
	s := New()
	p, err := s.LoadCashflow(context.Background())
	if err != nil || p.MonthlyIncome != 0 || len(p.FixedExpenses) != 0 || len(p.VariableExpenses) != 0 {
		t.Fatalf("unexpected profile: %+v err=%v", p, err)
	}
	loans, err := s.LoadLoans(context.Background())
	if err != nil || len(loans) != 0 {
		t.Fatalf("unexpected loans: %v err=%v", loans, err)
	}
}

func TestSaveReplacesAndCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := core.CashflowProfile{MonthlyIncome: 100, FixedExpenses: []core.ExpenseItem{{Name: "rent", Amount: 40}}}
	if err := s.SaveCashflow(ctx, p); err != nil {
		t.Fatalf("save cashflow: %v", err)
	}
	p.FixedExpenses[0].Amount = 999
	got, _ := s.LoadCashflow(ctx)
	if got.FixedExpenses[0].Amount != 40 {
		t.Fatalf("store aliased the caller's slice: %+v", got)
	}

	loans := []core.Loan{{ID: "a", LoanNo: "A"}, {ID: "b", LoanNo: "B"}}
	if err := s.SaveLoans(ctx, loans); err != nil {
		t.Fatalf("save loans: %v", err)
	}
	if err := s.SaveLoans(ctx, loans[1:]); err != nil {
		t.Fatalf("save loans: %v", err)
	}
	out, _ := s.LoadLoans(ctx)
	if len(out) != 1 || out[0].ID != "b" {
		t.Fatalf("expected full replace, got %+v", out)
	}
	out[0].MonthsPaid = 7
	again, _ := s.LoadLoans(ctx)
	if again[0].MonthsPaid != 0 {
		t.Fatal("loaded loans alias stored ones")
	}
}

func TestLoadNormalizesLegacyRecords(t *testing.T) {
	s := NewWithLoans([]core.Loan{{ID: "x", Status: core.StatusClosed}})
	loans, _ := s.LoadLoans(context.Background())
	if loans[0].Type != core.LoanTypeEMI || !loans[0].Archived {
		t.Fatalf("expected defaults applied, got %+v", loans[0])
	}
}
