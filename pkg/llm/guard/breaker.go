package guard

import (
	"sync"
	"time"

	"codeframe-be/internal/pkg/apperrors"
)

type BreakerState string

const (
	StateClosed   BreakerState = "closed"
	StateOpen     BreakerState = "open"
	StateHalfOpen BreakerState = "half_open"
)

const (
	DefaultFailureThreshold = 5
	DefaultCooldown         = 30 * time.Second
)

// Breaker is the circuit breaker protecting the LLM backend. State moves
// closed → open (threshold consecutive failures) → half_open (after the
// cool-down, one trial call) → closed on success or back to open on failure.
// While open, Allow fails fast with CircuitOpen and no network I/O happens.
type Breaker struct {
	mu               sync.Mutex
	failureThreshold int
	cooldown         time.Duration

	state           BreakerState
	consecutiveFail int
	openedAt        time.Time
	trialInFlight   bool
	now             func() time.Time
}

func NewBreaker(failureThreshold int, cooldown time.Duration) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = DefaultFailureThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Breaker{
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		state:            StateClosed,
		now:              time.Now,
	}
}

func (b *Breaker) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may go out. It performs the open → half_open
// transition when the cool-down has elapsed, admitting exactly one trial.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return apperrors.New(apperrors.KindCircuitOpen, "circuit breaker is open")
		}
		b.state = StateHalfOpen
		b.trialInFlight = true
		return nil
	case StateHalfOpen:
		if b.trialInFlight {
			return apperrors.New(apperrors.KindCircuitOpen, "half-open trial already in flight")
		}
		b.trialInFlight = true
		return nil
	}
	return nil
}

// Success records a successful call. A half-open trial success closes the
// circuit.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFail = 0
	b.trialInFlight = false
	b.state = StateClosed
}

// Failure records a failed call. The half-open trial failing reopens the
// circuit immediately; in closed state the threshold applies.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.trialInFlight = false
		b.open()
		return
	}

	b.consecutiveFail++
	if b.consecutiveFail >= b.failureThreshold {
		b.open()
	}
}

// Cancel releases an admitted call that never reached the backend (e.g. the
// rate limiter rejected it). No outcome is recorded.
func (b *Breaker) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trialInFlight = false
}

func (b *Breaker) open() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.consecutiveFail = 0
}
