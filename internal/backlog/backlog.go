// Package backlog watches the report queue for reports that have sat
// pending past a configurable age and logs a warning for each affected
// community.
// It changes nothing in the store; alerting on the log stream is how
// operators find out the queue is falling behind.
package backlog

import (
	"context"
	"log/slog"
	"time"
)

// ReportAger reports the age of the oldest pending report per community.
type ReportAger interface {
	OldestPendingReport(ctx context.Context, now time.Time) (map[string]time.Duration, error)
}

// Watcher periodically checks the age of the oldest pending report.
type Watcher struct {
	store        ReportAger
	maxAge       time.Duration
	tickInterval time.Duration
	logger       *slog.Logger
}

// NewWatcher creates a watcher that warns when the oldest pending report
// is older than maxAge.
func NewWatcher(s ReportAger, maxAge time.Duration, logger *slog.Logger) *Watcher {
	return &Watcher{
		store:        s,
		maxAge:       maxAge,
		tickInterval: 5 * time.Minute,
		logger:       logger,
	}
}

// SetTickInterval overrides the default tick interval (for testing).
func (w *Watcher) SetTickInterval(d time.Duration) {
	w.tickInterval = d
}

// Run starts a ticker loop that calls check on each tick. It blocks until
// the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	// Run once immediately on start.
	w.check(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("backlog watcher shutting down")
			return ctx.Err()
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *Watcher) check(ctx context.Context) {
	ages, err := w.store.OldestPendingReport(ctx, time.Now().UTC())
	if err != nil {
		w.logger.Error("checking report backlog", "error", err)
		return
	}
	for communityID, age := range ages {
		if age > w.maxAge {
			w.logger.Warn("stale pending reports",
				"community_id", communityID,
				"oldest_age", age.Round(time.Second).String(),
				"max_age", w.maxAge.String())
		}
	}
}
