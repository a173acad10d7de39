// Package resilience guards the survey engine's edges: scan sources are
// retried with backoff, and sinks and webhooks sit behind circuit breakers so
// a dead broker cannot stall the scan cycle.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// State is a breaker state.
type State int

const (
	// Closed lets calls through.
	Closed State = iota
	// Open rejects calls until the cool-down elapses.
	Open
	// HalfOpen lets probe calls through.
	HalfOpen
)

var stateNames = map[State]string{
	Closed:   "closed",
	Open:     "open",
	HalfOpen: "half-open",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// ErrCircuitOpen is returned for calls rejected by an open breaker.
var ErrCircuitOpen = eris.New("resilience: circuit open")

// BreakerSettings configures a Breaker.
type BreakerSettings struct {
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold int
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
	// Probes is how many successful probes close a half-open breaker.
	Probes int
	// OnTransition runs on every state change.
	OnTransition func(name string, from, to State)
}

// DefaultBreakerSettings returns five failures and a 30s cool-down.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
		Probes:           1,
	}
}

// SettingsFromConfig builds breaker settings from configuration values,
// keeping the default for anything unset.
func SettingsFromConfig(failureThreshold, resetTimeoutSecs int) BreakerSettings {
	s := DefaultBreakerSettings()
	if failureThreshold > 0 {
		s.FailureThreshold = failureThreshold
	}
	if resetTimeoutSecs > 0 {
		s.Cooldown = time.Duration(resetTimeoutSecs) * time.Second
	}
	return s
}

// Breaker is a circuit breaker for one downstream target.
type Breaker struct {
	name     string
	settings BreakerSettings

	mu        sync.Mutex
	state     State
	failures  int
	openedAt  time.Time
	successes int

	now func() time.Time
}

// NewBreaker creates a closed breaker named after the target it guards.
func NewBreaker(name string, settings BreakerSettings) *Breaker {
	d := DefaultBreakerSettings()
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = d.FailureThreshold
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = d.Cooldown
	}
	if settings.Probes <= 0 {
		settings.Probes = d.Probes
	}
	return &Breaker{name: name, settings: settings, now: time.Now}
}

// Name returns the guarded target's name.
func (b *Breaker) Name() string {
	return b.name
}

// Do runs fn unless the breaker is open.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	b.settle(err)
	return err
}

// Call is Do for functions that produce a value.
func Call[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.admit(); err != nil {
		return zero, err
	}
	v, err := fn(ctx)
	b.settle(err)
	return v, err
}

// State returns the effective state. An open breaker whose cool-down has
// elapsed reports HalfOpen.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.cooled() {
		return HalfOpen
	}
	return b.state
}

// Failures returns the consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Reset closes the breaker and clears its counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.successes = 0
	b.moveTo(Closed)
}

func (b *Breaker) cooled() bool {
	return b.now().Sub(b.openedAt) >= b.settings.Cooldown
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Open {
		return nil
	}
	if !b.cooled() {
		return eris.Wrapf(ErrCircuitOpen, "%s", b.name)
	}
	b.moveTo(HalfOpen)
	return nil
}

func (b *Breaker) settle(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		if b.state == HalfOpen {
			b.successes++
			if b.successes >= b.settings.Probes {
				b.successes = 0
				b.moveTo(Closed)
			}
		}
		return
	}

	b.failures++
	switch {
	case b.state == HalfOpen:
		b.successes = 0
		b.openedAt = b.now()
		b.moveTo(Open)
	case b.state == Closed && b.failures >= b.settings.FailureThreshold:
		b.openedAt = b.now()
		b.moveTo(Open)
	}
}

// moveTo must be called with mu held.
func (b *Breaker) moveTo(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	zap.L().Info("resilience: breaker state change",
		zap.String("target", b.name),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
	if b.settings.OnTransition != nil {
		b.settings.OnTransition(b.name, from, to)
	}
}

// Breakers hands out one breaker per target name.
type Breakers struct {
	settings BreakerSettings

	mu    sync.Mutex
	byKey map[string]*Breaker
}

// NewBreakers creates an empty registry sharing settings across targets.
func NewBreakers(settings BreakerSettings) *Breakers {
	return &Breakers{settings: settings, byKey: make(map[string]*Breaker)}
}

// For returns the breaker for name, creating it on first use.
func (r *Breakers) For(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.byKey[name]; ok {
		return b
	}
	b := NewBreaker(name, r.settings)
	r.byKey[name] = b
	return b
}

// States reports the state of every known breaker.
func (r *Breakers) States() map[string]State {
	r.mu.Lock()
	breakers := make([]*Breaker, 0, len(r.byKey))
	for _, b := range r.byKey {
		breakers = append(breakers, b)
	}
	r.mu.Unlock()

	out := make(map[string]State, len(breakers))
	for _, b := range breakers {
		out[b.name] = b.State()
	}
	return out
}
