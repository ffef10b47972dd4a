// Package worker keeps the Google Sheets mirror of the loan table in step with
// the store.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"viveka/internal/amqp"
	"viveka/internal/ports"
)

// SyncWorker rewrites the loan sheet from the current stored loan set. Events
// only say that something changed; the store is always the source of truth.
type SyncWorker struct {
	store  ports.LoanStore
	sheets ports.LoanSheetWriter

	mu         sync.Mutex
	lastExport time.Time
}

func NewSyncWorker(store ports.LoanStore, sheets ports.LoanSheetWriter) *SyncWorker {
	return &SyncWorker{store: store, sheets: sheets}
}

// HandleLoanEvent processes one loan event from AMQP.
func (w *SyncWorker) HandleLoanEvent(ctx context.Context, msg *amqp.LoanEventMessage) error {
	slog.InfoContext(ctx, "Processing loan event",
		"loan_id", msg.LoanID,
		"action", msg.Action,
		"published_at", msg.Timestamp)

	// An export finished after the event was published already contains it.
	if last := w.LastExport(); !msg.Timestamp.IsZero() && last.After(msg.Timestamp) {
		slog.DebugContext(ctx, "Loan event already covered by a later export", "loan_id", msg.LoanID, "last_export", last)
		return nil
	}

	if err := w.Export(ctx); err != nil {
		return fmt.Errorf("export after %s of %s: %w", msg.Action, msg.LoanID, err)
	}
	return nil
}

// Export writes the full loan table.
func (w *SyncWorker) Export(ctx context.Context) error {
	started := time.Now()

	loans, err := w.store.LoadLoans(ctx)
	if err != nil {
		return fmt.Errorf("load loans: %w", err)
	}
	if err := w.sheets.WriteLoans(ctx, loans); err != nil {
		return fmt.Errorf("write loans to sheet: %w", err)
	}

	w.mu.Lock()
	w.lastExport = started
	w.mu.Unlock()

	slog.InfoContext(ctx, "Loan sheet synced", "loans", len(loans), "duration", time.Since(started))
	return nil
}

func (w *SyncWorker) LastExport() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastExport
}

// StartupSync exports once so the sheet catches up with changes made while the
// worker was down.
func (w *SyncWorker) StartupSync(ctx context.Context) error {
	slog.InfoContext(ctx, "Running startup loan sheet sync")
	if err := w.Export(ctx); err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	return nil
}
