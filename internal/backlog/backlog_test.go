package backlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// ageStore is a canned ReportAger.
type ageStore struct {
	mu    sync.Mutex
	ages  map[string]time.Duration
	err   error
	calls int
}

func (m *ageStore) OldestPendingReport(_ context.Context, _ time.Time) (map[string]time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.ages, nil
}

func runWatcher(t *testing.T, s *ageStore, maxAge time.Duration) string {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	logger := slog.New(slog.NewTextHandler(&lockedWriter{w: &buf, mu: &mu}, nil))

	w := NewWatcher(s, maxAge, logger)
	w.SetTickInterval(5 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run returned %v, want deadline exceeded", err)
	}

	mu.Lock()
	defer mu.Unlock()
	return buf.String()
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func TestWatcher_WarnsOnStaleReports(t *testing.T) {
	s := &ageStore{ages: map[string]time.Duration{"comm-1": 48 * time.Hour}}
	out := runWatcher(t, s, 24*time.Hour)

	if !strings.Contains(out, "stale pending reports") {
		t.Errorf("expected a staleness warning, got:\n%s", out)
	}
	if !strings.Contains(out, "comm-1") {
		t.Errorf("warning should name the community, got:\n%s", out)
	}
}

func TestWatcher_QuietWhenFresh(t *testing.T) {
	s := &ageStore{ages: map[string]time.Duration{"comm-1": time.Hour}}
	out := runWatcher(t, s, 24*time.Hour)

	if strings.Contains(out, "stale pending reports") {
		t.Errorf("fresh queue should not warn, got:\n%s", out)
	}
}

func TestWatcher_LogsStoreErrors(t *testing.T) {
	s := &ageStore{err: errors.New("db locked")}
	out := runWatcher(t, s, 24*time.Hour)

	if !strings.Contains(out, "checking report backlog") {
		t.Errorf("expected an error log, got:\n%s", out)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == 0 {
		t.Error("watcher never called the store")
	}
}
