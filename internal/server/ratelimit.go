package server

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig holds configuration for rate limiting.
type RateLimiterConfig struct {
	// Per-actor limits for report submission endpoints.
	ReportsPerMinute int
	ReportBurst      int
	// CleanupInterval is how often stale limiters are purged.
	CleanupInterval time.Duration
}

// DefaultRateLimiterConfig returns sensible defaults.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		ReportsPerMinute: 10,
		ReportBurst:      5,
		CleanupInterval:  5 * time.Minute,
	}
}

type actorLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles report submissions per acting user.
type RateLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	limiters map[string]*actorLimiter
	stopCh   chan struct{}
}

// NewRateLimiter creates a new RateLimiter and starts a background cleanup
// goroutine. Call Stop() to release resources.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:   config,
		limiters: make(map[string]*actorLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Stop halts the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *RateLimiter) cleanup() {
	interval := rl.config.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			ttl := 10 * time.Minute
			rl.mu.Lock()
			for actor, al := range rl.limiters {
				if time.Since(al.lastSeen) > ttl {
					delete(rl.limiters, actor)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// AllowReport checks whether the actor may submit another report.
func (rl *RateLimiter) AllowReport(actorID string) bool {
	rl.mu.Lock()
	al, ok := rl.limiters[actorID]
	if !ok {
		al = &actorLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(rl.config.ReportsPerMinute)/60.0), rl.config.ReportBurst),
		}
		rl.limiters[actorID] = al
	}
	al.lastSeen = time.Now()
	rl.mu.Unlock()
	return al.limiter.Allow()
}

// ReportRateLimitMiddleware returns middleware that enforces per-actor rate
// limits on report submission endpoints. It returns 429 Too Many Requests
// when the limit is exceeded.
func ReportRateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorIDFromContext(r.Context())
			if actor != "" && !rl.AllowReport(actor) {
				writeError(w, http.StatusTooManyRequests, "too many reports, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
