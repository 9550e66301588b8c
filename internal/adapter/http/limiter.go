package httpadapter

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"airdrop-ledger/internal/core/domain"
)

const (
	limiterIdle    = 10 * time.Minute
	limiterMaxIdle = 10_000
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// callerLimiter keeps one token bucket per caller. Buckets idle for
// limiterIdle are dropped once more than limiterMaxIdle are tracked.
type callerLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	callers map[domain.Address]*limiterEntry
	now     func() time.Time
}

func newCallerLimiter(rps float64, burst int) *callerLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &callerLimiter{
		limit:   limit,
		burst:   burst,
		callers: make(map[domain.Address]*limiterEntry),
		now:     time.Now,
	}
}

func (l *callerLimiter) allow(who domain.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	e, ok := l.callers[who]
	if !ok {
		if len(l.callers) >= limiterMaxIdle {
			l.prune(now)
		}
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.callers[who] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *callerLimiter) prune(now time.Time) {
	for who, e := range l.callers {
		if now.Sub(e.lastSeen) > limiterIdle {
			delete(l.callers, who)
		}
	}
}

// limitClaims answers 429 when the caller exceeds its claim rate.
func (h *Handler) limitClaims(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.allow(caller(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "too many claims", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
