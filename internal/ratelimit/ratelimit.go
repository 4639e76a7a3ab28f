// Package ratelimit provides the per-player velocity check used by the
// anti-fraud gate. Each player gets a token bucket sized to the
// configured attempt budget, so bursts up to the budget pass and
// sustained traffic is held to the configured rate.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pruneThreshold bounds the visitor map; once exceeded, entries idle
// past their ttl are dropped on the next Allow call.
const pruneThreshold = 10000

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter tracks one token bucket per key.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	clockNow func() time.Time
}

// New creates a Limiter allowing at most attempts per window for each
// key, with bursts up to the full budget.
func New(attempts int, window time.Duration) *Limiter {
	if attempts <= 0 {
		attempts = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(attempts) / window.Seconds()),
		burst:    attempts,
		ttl:      10 * window,
		clockNow: time.Now,
	}
}

// Allow reports whether the key may attempt another operation now.
func (l *Limiter) Allow(key string) bool {
	now := l.clockNow()

	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	if len(l.visitors) > pruneThreshold {
		l.prune(now)
	}

	return v.limiter.AllowN(now, 1)
}

// prune drops entries idle past ttl. Caller holds the lock.
func (l *Limiter) prune(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.visitors, key)
		}
	}
}
