package service

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/notechain-go/internal/core/domain"
	"github.com/yndnr/notechain-go/pkg/cmap"
)

// DefaultLimiterIdleTTL is how long a client's bucket survives without traffic.
const DefaultLimiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// RateLimiterRegistry manages one token bucket per client key. Buckets idle
// for longer than the idle TTL are evicted as traffic arrives.
type RateLimiterRegistry struct {
	limiters  *cmap.Map[string, *limiterEntry]
	idleTTL   time.Duration
	lastPrune atomic.Int64
	now       func() time.Time
}

// NewRateLimiterRegistry creates a registry that evicts buckets idle for
// longer than idleTTL. A non-positive idleTTL selects DefaultLimiterIdleTTL.
func NewRateLimiterRegistry(idleTTL time.Duration) *RateLimiterRegistry {
	if idleTTL <= 0 {
		idleTTL = DefaultLimiterIdleTTL
	}
	return &RateLimiterRegistry{
		limiters: cmap.New[string, *limiterEntry](),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Check reports domain.ErrRateLimited when key exceeded rateLimit requests
// per second (burst = rateLimit). A non-positive rateLimit disables the check.
func (r *RateLimiterRegistry) Check(_ context.Context, key string, rateLimit int) error {
	if rateLimit <= 0 {
		return nil
	}

	now := r.now()
	r.maybePrune(now)

	entry, _ := r.limiters.GetOrCompute(key, func() *limiterEntry {
		return &limiterEntry{limiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimit)}
	})
	entry.lastSeen.Store(now.UnixNano())

	if !entry.limiter.AllowN(now, 1) {
		reservation := entry.limiter.ReserveN(now, 1)
		delay := reservation.DelayFrom(now)
		reservation.CancelAt(now)

		return domain.ErrRateLimited.WithDetails(
			"rate limit exceeded, retry after " + delay.String(),
		)
	}
	return nil
}

// Prune evicts buckets that saw no traffic for longer than the idle TTL and
// returns how many were removed.
func (r *RateLimiterRegistry) Prune() int {
	cutoff := r.now().Add(-r.idleTTL).UnixNano()
	return r.limiters.DeleteFunc(func(_ string, e *limiterEntry) bool {
		return e.lastSeen.Load() < cutoff
	})
}

// maybePrune runs Prune at most once per idle TTL.
func (r *RateLimiterRegistry) maybePrune(now time.Time) {
	last := r.lastPrune.Load()
	if now.UnixNano()-last < int64(r.idleTTL) {
		return
	}
	if r.lastPrune.CompareAndSwap(last, now.UnixNano()) {
		r.Prune()
	}
}

// Len returns the number of tracked clients.
func (r *RateLimiterRegistry) Len() int {
	return r.limiters.Count()
}
