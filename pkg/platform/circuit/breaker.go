// Package circuit provides a small circuit breaker guarding calls to external services.
package circuit

import (
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is healthy and calls flow normally.
	StateClosed State = iota
	// StateOpen means the circuit has tripped and calls fail fast.
	StateOpen
	// StateHalfOpen means the cooldown elapsed and a probe call is in flight.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// StateChange represents a circuit breaker state transition.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker tracks consecutive failures of an external dependency.
// After FailureThreshold consecutive failures the circuit opens and Allow
// rejects calls until the cooldown passes; one probe is then let through and
// its outcome either closes the circuit or re-opens it.
type Breaker struct {
	mu               sync.Mutex
	state            State
	name             string
	failureCount     int
	failureThreshold int
	cooldown         time.Duration
	openedAt         time.Time
	now              func() time.Time
}

// Option configures a Breaker instance.
type Option func(*Breaker)

// WithFailureThreshold sets the number of consecutive failures to open the circuit.
// Default is 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithCooldown sets how long the circuit stays open before a probe is allowed.
// Default is 30s.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates a circuit breaker with the given name and options.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: 5,
		cooldown:         30 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Name returns the circuit breaker's name for logging/metrics.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may proceed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Sub(b.openedAt) >= b.cooldown {
			b.state = StateHalfOpen
			return true
		}
		return false
	default:
		// A probe is already in flight.
		return false
	}
}

// RecordFailure records a failed call and reports whether the circuit just opened.
func (b *Breaker) RecordFailure() StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	if b.state == StateHalfOpen {
		b.state = StateOpen
		b.openedAt = b.now()
		return StateChange{}
	}
	if b.state == StateClosed && b.failureCount >= b.failureThreshold {
		b.state = StateOpen
		b.openedAt = b.now()
		return StateChange{Opened: true}
	}
	return StateChange{}
}

// RecordSuccess records a successful call and reports whether the circuit just closed.
func (b *Breaker) RecordSuccess() StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount = 0
	if b.state != StateClosed {
		b.state = StateClosed
		return StateChange{Closed: true}
	}
	return StateChange{}
}

// Reset resets the circuit breaker to closed state with zero counts.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failureCount = 0
}
