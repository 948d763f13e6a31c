package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultWindow is the fixed rate-limit window for verification
	// attempts.
	DefaultWindow = time.Minute
	// DefaultLimit is the number of attempts allowed per window.
	DefaultLimit = 5
	// sweepInterval is how often expired windows are garbage-collected.
	sweepInterval = 5 * time.Minute
)

// AttemptLimiter throttles password verification attempts per client
// identifier. The in-process implementation below enforces a per-node
// quota only; behind a load balancer each instance counts on its own.
// A distributed backend can be injected via WithAttemptLimiter.
type AttemptLimiter interface {
	// Allow records one attempt for id and reports whether it may
	// proceed. The attempt consumes quota regardless of the later
	// verification outcome.
	Allow(id string) (ok bool, retryAfter time.Duration)
}

type windowRecord struct {
	count     int
	resetTime time.Time
}

// FixedWindowLimiter is a mutex-guarded fixed-window AttemptLimiter.
// State lives in process memory and is lost on restart; this is a soft
// throttle, not a security boundary.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	records map[string]*windowRecord
	now     func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

var _ AttemptLimiter = (*FixedWindowLimiter)(nil)

// NewFixedWindowLimiter creates a limiter allowing limit attempts per
// window and starts its background sweep goroutine.
func NewFixedWindowLimiter(window time.Duration, limit int) *FixedWindowLimiter {
	l := &FixedWindowLimiter{
		window:  window,
		limit:   limit,
		records: make(map[string]*windowRecord),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Allow implements AttemptLimiter.
func (l *FixedWindowLimiter) Allow(id string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.records[id]
	if !ok || now.After(rec.resetTime) {
		l.records[id] = &windowRecord{count: 1, resetTime: now.Add(l.window)}
		return true, 0
	}
	if rec.count >= l.limit {
		return false, rec.resetTime.Sub(now)
	}
	rec.count++
	return true, 0
}

// Close stops the background sweep goroutine.
func (l *FixedWindowLimiter) Close() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
}

func (l *FixedWindowLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stopCh:
			return
		}
	}
}

// sweep removes records whose window has elapsed.
func (l *FixedWindowLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, rec := range l.records {
		if now.After(rec.resetTime) {
			delete(l.records, id)
		}
	}
}

// writeRateLimited sends a 429 Too Many Requests response.
func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Retry-After", retryAfterString(retryAfter))
	writeError(w, http.StatusTooManyRequests, "too many attempts; try again later")
}

func retryAfterString(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// clientID derives the rate-limit key for a request: the first
// X-Forwarded-For entry, then the direct peer address, then the shared
// "unknown" bucket when neither is usable.
func clientID(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if addr := strings.TrimSpace(r.RemoteAddr); addr != "" {
		return addr
	}
	return "unknown"
}
