// Package guard implements the three protections wrapped around every
// outbound LLM call: a sliding-window rate limiter, a circuit breaker and a
// per-job cost guard. State is process-local and injected, never global.
package guard

import (
	"context"
	"sync"
	"time"

	"codeframe-be/internal/pkg/apperrors"
)

// Limiter is a sliding-window rate limiter: at most `limit` calls per
// `window`. Excess calls wait in a bounded queue; once the queue is full
// further calls fail immediately as RateLimited.
type Limiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	maxQueue int
	stamps   []time.Time
	waiting  int
	now      func() time.Time
}

func NewLimiter(limit int, window time.Duration, maxQueue int) *Limiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		limit:    limit,
		window:   window,
		maxQueue: maxQueue,
		now:      time.Now,
	}
}

// SetClock replaces the time source. Tests advance a fake clock instead of
// sleeping.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.stamps) && !l.stamps[i].After(cutoff) {
		i++
	}
	l.stamps = l.stamps[i:]
}

// TryAcquire takes a slot if one is free right now. It never blocks.
func (l *Limiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)
	if len(l.stamps) < l.limit {
		l.stamps = append(l.stamps, now)
		return true
	}
	return false
}

// Acquire blocks until a slot frees up or the context ends. When the wait
// queue is already at maxQueue depth the call fails fast.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	now := l.now()
	l.prune(now)
	if len(l.stamps) < l.limit {
		l.stamps = append(l.stamps, now)
		l.mu.Unlock()
		return nil
	}
	if l.waiting >= l.maxQueue {
		l.mu.Unlock()
		return apperrors.New(apperrors.KindRateLimited, "rate limiter queue is full")
	}
	l.waiting++
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.waiting--
		l.mu.Unlock()
	}()

	for {
		l.mu.Lock()
		now = l.now()
		l.prune(now)
		if len(l.stamps) < l.limit {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}
		// Sleep until the oldest stamp leaves the window.
		wait := l.stamps[0].Add(l.window).Sub(now)
		l.mu.Unlock()
		if wait < 10*time.Millisecond {
			wait = 10 * time.Millisecond
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return apperrors.Wrap(apperrors.KindRateLimited, "context ended while queued", ctx.Err())
		case <-timer.C:
		}
	}
}

// InFlight reports how many stamps are currently inside the window.
func (l *Limiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.stamps)
}
