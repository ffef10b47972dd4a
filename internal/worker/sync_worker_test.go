package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"viveka/internal/amqp"
	"viveka/internal/core"
	"viveka/internal/storage/memory"
)

func seededStore() *memory.Store {
	return memory.NewWithLoans([]core.Loan{
		{ID: "a", LoanNo: "A-1", Lender: "x", Type: core.LoanTypeEMI, Status: core.StatusActive, Principal: 100, TotalMonths: 10, EMI: 11},
	})
}

func TestHandleLoanEventExportsCurrentLoans(t *testing.T) {
	sheet := newFakeSheet()
	w := NewSyncWorker(seededStore(), sheet)

	msg := amqp.NewLoanEventMessage("a", "paid")
	if err := w.HandleLoanEvent(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if rows := sheet.Rows(); sheet.Writes() != 1 || len(rows) != 3 || rows[1][0] != "A-1" {
		t.Fatalf("unexpected sheet rows %v", rows)
	}
	if w.LastExport().IsZero() {
		t.Fatal("last export not recorded")
	}
}

func TestHandleLoanEventSkipsCoveredEvents(t *testing.T) {
	sheet := newFakeSheet()
	w := NewSyncWorker(seededStore(), sheet)

	old := &amqp.LoanEventMessage{LoanID: "a", Action: "paid", Timestamp: time.Now().Add(-time.Minute)}
	if err := w.StartupSync(context.Background()); err != nil {
		t.Fatalf("startup: %v", err)
	}
	if err := w.HandleLoanEvent(context.Background(), old); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if sheet.Writes() != 1 {
		t.Fatalf("expected event older than the last export to be skipped, got %d writes", sheet.Writes())
	}
}

func TestHandleLoanEventSurfacesSheetErrors(t *testing.T) {
	sheet := newFakeSheet()
	sheet.failWith(errors.New("quota exceeded"))
	w := NewSyncWorker(seededStore(), sheet)

	err := w.HandleLoanEvent(context.Background(), amqp.NewLoanEventMessage("a", "created"))
	if err == nil {
		t.Fatal("expected error so the message is requeued")
	}
	if !w.LastExport().IsZero() {
		t.Fatal("failed export must not be recorded")
	}
}

func TestPeriodicExporter(t *testing.T) {
	sheet := newFakeSheet()
	p := NewPeriodicExporter(NewSyncWorker(seededStore(), sheet), 10*time.Millisecond)

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := p.Start(ctx); err == nil {
		t.Fatal("second start should fail")
	}

	deadline := time.Now().Add(2 * time.Second)
	for sheet.Writes() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sheet.Writes() < 2 {
		t.Fatalf("expected repeated exports, got %d", sheet.Writes())
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if p.IsRunning() {
		t.Fatal("exporter still running after stop")
	}
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("second stop should be a no-op: %v", err)
	}
}

func TestPeriodicExporterRejectsZeroInterval(t *testing.T) {
	p := NewPeriodicExporter(NewSyncWorker(seededStore(), newFakeSheet()), 0)
	if err := p.Start(context.Background()); err == nil {
		t.Fatal("expected error for zero interval")
	}
}
