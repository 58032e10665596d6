// Package circuit provides a two-state circuit breaker for calls to
// unreliable dependencies.
package circuit

import "sync"

// State represents the circuit breaker state.
type State int

const (
	// StateClosed: calls flow normally.
	StateClosed State = iota
	// StateOpen: the dependency is failing; callers degrade.
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// StateChange represents a circuit breaker state transition.
type StateChange struct {
	Opened bool
	Closed bool
}

// Snapshot is a point-in-time view of a breaker, for status endpoints.
type Snapshot struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	ProbeSuccesses      int    `json:"probe_successes"`
	ProbeInFlight       bool   `json:"probe_in_flight"`
}

// Breaker opens after FailureThreshold consecutive failures. While open it
// counts consecutive successes and closes again after SuccessThreshold.
// While open, at most one probe call is in flight; see Acquire.
type Breaker struct {
	mu               sync.Mutex
	state            State
	probing          bool
	name             string
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
	onChange         func(name string, to State)
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

// WithSuccessThreshold sets the number of consecutive successes to close the circuit.
// Default is 2.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// WithStateChangeHook calls fn after every transition, outside the lock.
func WithStateChangeHook(fn func(name string, to State)) Option {
	return func(b *Breaker) {
		b.onChange = fn
	}
}

// New creates a circuit breaker with the given name and options.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: 5,
		successThreshold: 2,
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

// IsOpen returns true if the circuit is open (tripped).
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == StateOpen
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Name:                b.name,
		State:               b.state.String(),
		ConsecutiveFailures: b.failureCount,
		ProbeSuccesses:      b.successCount,
		ProbeInFlight:       b.probing,
	}
}

// Acquire asks permission to call the dependency. A closed circuit always
// allows the call. An open circuit hands out a single probe token: the first
// caller gets probe=true and must call release when its attempt is recorded;
// everyone else gets ok=false until then.
func (b *Breaker) Acquire() (probe bool, release func(), ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return false, func() {}, true
	}
	if b.probing {
		return false, nil, false
	}
	b.probing = true
	var once sync.Once
	return true, func() {
		once.Do(func() {
			b.mu.Lock()
			b.probing = false
			b.mu.Unlock()
		})
	}, true
}

// RecordFailure records a failed call. useFallback is true while the circuit
// is open; change reports whether this failure opened it.
func (b *Breaker) RecordFailure() (useFallback bool, change StateChange) {
	b.mu.Lock()
	b.failureCount++
	b.successCount = 0

	switch {
	case b.state == StateOpen:
		useFallback = true
	case b.failureCount >= b.failureThreshold:
		b.state = StateOpen
		useFallback, change = true, StateChange{Opened: true}
	}
	b.mu.Unlock()

	if change.Opened {
		b.notify(StateOpen)
	}
	return useFallback, change
}

// RecordSuccess records a successful call. usePrimary is false while an open
// circuit is still collecting probe successes; change reports whether this
// success closed it.
func (b *Breaker) RecordSuccess() (usePrimary bool, change StateChange) {
	b.mu.Lock()
	if b.state == StateOpen {
		b.successCount++
		if b.successCount >= b.successThreshold {
			b.state = StateClosed
			b.failureCount = 0
			b.successCount = 0
			usePrimary, change = true, StateChange{Closed: true}
		}
	} else {
		b.failureCount = 0
		usePrimary = true
	}
	b.mu.Unlock()

	if change.Closed {
		b.notify(StateClosed)
	}
	return usePrimary, change
}

// Reset resets the circuit breaker to closed state with zero counts.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.probing = false
	b.failureCount = 0
	b.successCount = 0
}

func (b *Breaker) notify(to State) {
	if b.onChange != nil {
		b.onChange(b.name, to)
	}
}
