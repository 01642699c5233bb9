package infra

import (
	"errors"
	"sync"
	"time"
)

// Breaker guards the SMTP relay with a circuit-breaker state machine
// (closed → open → half-open) so a dead mail server fails fast instead of
// stalling every report job in the worker pool.

// BreakerState is the current position of the state machine.
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // normal — calls flow through
	BreakerOpen                         // tripped — calls fail immediately
	BreakerHalfOpen                     // probing — a single call is let through
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned by Do while the breaker is open.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// Breaker trips after maxFailures consecutive failures, stays open for
// cooldown, then lets probe calls through; successProbes consecutive
// successful probes close it again.
type Breaker struct {
	mu            sync.Mutex
	state         BreakerState
	failures      int
	probes        int
	trippedAt     time.Time
	maxFailures   int
	successProbes int
	cooldown      time.Duration
}

// NewBreaker creates a closed breaker. Non-positive arguments fall back to
// 5 failures / 2 probes / 60s cooldown.
func NewBreaker(maxFailures, successProbes int, cooldown time.Duration) *Breaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if successProbes <= 0 {
		successProbes = 2
	}
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}
	return &Breaker{
		state:         BreakerClosed,
		maxFailures:   maxFailures,
		successProbes: successProbes,
		cooldown:      cooldown,
	}
}

// State reports the current state, moving open → half-open once the
// cooldown has elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerOpen && time.Since(b.trippedAt) >= b.cooldown {
		b.state = BreakerHalfOpen
		b.probes = 0
	}
	return b.state
}

// Do runs fn unless the breaker is open, and records the outcome.
func (b *Breaker) Do(fn func() error) error {
	if b.State() == BreakerOpen {
		return ErrBreakerOpen
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *Breaker) recordFailure() {
	b.failures++
	b.trippedAt = time.Now()

	switch b.state {
	case BreakerClosed:
		if b.failures >= b.maxFailures {
			b.state = BreakerOpen
			b.probes = 0
		}
	case BreakerHalfOpen:
		// probe failed, back to open for another cooldown
		b.state = BreakerOpen
		b.failures = 0
	}
}

func (b *Breaker) recordSuccess() {
	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.probes++
		if b.probes >= b.successProbes {
			b.state = BreakerClosed
			b.failures = 0
			b.probes = 0
		}
	}
}
