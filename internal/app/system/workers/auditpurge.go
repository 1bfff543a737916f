// internal/app/system/workers/auditpurge.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/posthub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Purger deletes audit events older than a cutoff.
type Purger interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditPurge is a background worker that trims audit_events to a
// retention window.
type AuditPurge struct {
	store     Purger
	log       *zap.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewAuditPurge creates a purge worker that runs every interval and removes
// events older than retention.
func NewAuditPurge(store Purger, logger *zap.Logger, interval, retention time.Duration) *AuditPurge {
	return &AuditPurge{
		store:     store,
		log:       logger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start runs one purge immediately and then begins the background loop.
func (w *AuditPurge) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("audit purge worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *AuditPurge) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("audit purge worker stopped")
	})
}

func (w *AuditPurge) run() {
	defer w.wg.Done()

	w.Purge()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Purge()
		}
	}
}

// Purge runs a single retention pass.
func (w *AuditPurge) Purge() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	cutoff := w.now().UTC().Add(-w.retention)
	count, err := w.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		w.log.Error("failed to purge audit events", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("purged audit events", zap.Int64("count", count), zap.Time("before", cutoff))
	}
}
