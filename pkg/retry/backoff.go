// Package retry provides the explicit retry state machine used by the job
// worker: an attempt counter plus the next delay, advanceable without
// sleeping so tests can step through it.
package retry

import "time"

const (
	DefaultMaxAttempts = 3
	DefaultBase        = 2 * time.Second
	DefaultMax         = 60 * time.Second
)

// Backoff tracks retries of one stage. Zero-valued fields fall back to the
// defaults on first use.
type Backoff struct {
	Attempt     int
	MaxAttempts int
	Base        time.Duration
	Max         time.Duration
}

func New(maxAttempts int, base, max time.Duration) *Backoff {
	return &Backoff{MaxAttempts: maxAttempts, Base: base, Max: max}
}

func (b *Backoff) defaults() {
	if b.MaxAttempts == 0 {
		b.MaxAttempts = DefaultMaxAttempts
	}
	if b.Base == 0 {
		b.Base = DefaultBase
	}
	if b.Max == 0 {
		b.Max = DefaultMax
	}
}

// Next advances the state machine. It returns the delay before the next
// attempt and false once the attempt budget is spent.
func (b *Backoff) Next() (time.Duration, bool) {
	b.defaults()
	if b.Attempt >= b.MaxAttempts {
		return 0, false
	}
	delay := b.Base << uint(b.Attempt) // 1x, 2x, 4x, ...
	if delay > b.Max {
		delay = b.Max
	}
	b.Attempt++
	return delay, true
}

// Exhausted reports whether the budget is spent without advancing.
func (b *Backoff) Exhausted() bool {
	b.defaults()
	return b.Attempt >= b.MaxAttempts
}

func (b *Backoff) Reset() {
	b.Attempt = 0
}
