// Package ratelimit throttles repeated attempts per client key.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long a key is remembered after its last attempt.
const DefaultIdleTTL = 10 * time.Minute

// Limit describes how many attempts a key gets per interval.
type Limit struct {
	Attempts int
	Interval time.Duration
	// Burst defaults to Attempts when zero.
	Burst int
}

func (l Limit) rate() rate.Limit {
	if l.Attempts <= 0 || l.Interval <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(l.Attempts) / l.Interval.Seconds())
}

func (l Limit) burst() int {
	if l.Burst > 0 {
		return l.Burst
	}
	return max(l.Attempts, 1)
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key. Keys idle past the TTL are
// forgotten so per-IP buckets do not pile up.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   Limit
	idleTTL time.Duration
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a limiter and starts its idle sweeper. Call Stop when done.
func New(limit Limit) *Limiter {
	return NewWithIdleTTL(limit, DefaultIdleTTL)
}

// NewWithIdleTTL is New with a custom idle TTL.
func NewWithIdleTTL(limit Limit, idleTTL time.Duration) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		idleTTL: idleTTL,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go l.sweepLoop(idleTTL / 2)
	return l
}

// Allow reports whether key may make another attempt now.
func (l *Limiter) Allow(key string) bool {
	ok, _ := l.Check(key)
	return ok
}

// Check consumes a token for key. When none is left it returns false and how
// long until the next token, without consuming anything.
func (l *Limiter) Check(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b := l.bucketLocked(key, now)

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len returns the number of keys being tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) bucketLocked(key string, now time.Time) *bucket {
	if b, ok := l.buckets[key]; ok {
		b.lastSeen = now
		return b
	}
	b := &bucket{limiter: rate.NewLimiter(l.limit.rate(), l.limit.burst()), lastSeen: now}
	l.buckets[key] = b
	return b
}

// sweep drops keys idle for longer than the TTL and returns how many went.
func (l *Limiter) sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	removed := 0
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Stop shuts down the sweeper.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

func (l *Limiter) sweepLoop(interval time.Duration) {
	if interval <= 0 {
		<-l.done
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}
