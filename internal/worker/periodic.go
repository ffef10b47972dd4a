package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// PeriodicExporter re-exports on a fixed interval as a backstop for lost
// events.
type PeriodicExporter struct {
	worker   *SyncWorker
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewPeriodicExporter(worker *SyncWorker, interval time.Duration) *PeriodicExporter {
	return &PeriodicExporter{worker: worker, interval: interval}
}

// Start begins the loop. It returns an error if already running.
func (p *PeriodicExporter) Start(ctx context.Context) error {
	if p.interval <= 0 {
		return fmt.Errorf("periodic export interval must be positive, got %s", p.interval)
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("periodic exporter is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	go p.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "Periodic loan export started", "interval", p.interval)
	return nil
}

// Stop signals the loop and waits for it to finish or for ctx to expire.
func (p *PeriodicExporter) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Periodic loan export stopped")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Periodic loan export stop timed out")
		return ctx.Err()
	}
}

func (p *PeriodicExporter) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *PeriodicExporter) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.worker.Export(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic loan export failed", "error", err)
			}
		}
	}
}
