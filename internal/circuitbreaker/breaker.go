package circuitbreaker

import (
	"fmt"
	"sync"
	"time"

	"github.com/angeloszaimis/highlights/internal/status"
)

type State int

const (
	StateClosed   State = iota // Remote always eligible
	StateOpen                  // Remote skipped, local data only
	StateHalfOpen              // Disabled, but cooldown or retry budget lets calls through
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{StateClosed, StateOpen, StateHalfOpen} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown circuit state %q", text)
}

// Resetter clears the notification streak when the remote feed recovers.
type Resetter interface {
	Reset() bool
}

type Config struct {
	MaxRetries int
	Cooldown   time.Duration
	// DisableAfter consecutive failures turn the tracker off. Zero keeps it on forever.
	DisableAfter int
}

type Option func(*Tracker)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

type Tracker struct {
	mutex       sync.Mutex
	lastSuccess time.Time
	retryCount  int
	failures    int
	enabled     bool

	maxRetries   int
	cooldown     time.Duration
	disableAfter int

	guard  Resetter
	events status.Publisher
	now    func() time.Time
}

func NewTracker(cfg Config, guard Resetter, events status.Publisher, opts ...Option) *Tracker {
	t := &Tracker{
		enabled:      true,
		maxRetries:   cfg.MaxRetries,
		cooldown:     cfg.Cooldown,
		disableAfter: cfg.DisableAfter,
		guard:        guard,
		events:       events,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// ShouldRetry decides whether the next fetch may try the remote feed. A
// call admitted by the retry budget consumes one retry.
func (t *Tracker) ShouldRetry() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.enabled {
		return true
	}

	if t.now().Sub(t.lastSuccess) >= t.cooldown {
		return true
	}

	if t.retryCount < t.maxRetries {
		t.retryCount++
		return true
	}

	return false
}

// RecordSuccess closes the circuit and announces the connection. The event
// does not ask listeners to refetch; the data they need is already on its way.
func (t *Tracker) RecordSuccess() {
	t.mutex.Lock()
	t.lastSuccess = t.now()
	t.retryCount = 0
	t.failures = 0
	t.enabled = true
	t.mutex.Unlock()

	t.guard.Reset()
	t.events.Publish(status.Connected())
}

// RecordFailure counts a failed remote attempt and reports whether this
// failure disabled the tracker.
func (t *Tracker) RecordFailure() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.failures++

	if t.disableAfter > 0 && t.enabled && t.failures >= t.disableAfter {
		t.enabled = false
		t.retryCount = 0
		return true
	}

	return false
}

// ForceReset makes the remote feed eligible again right away and asks
// listeners to refetch.
func (t *Tracker) ForceReset() {
	t.mutex.Lock()
	t.retryCount = 0
	t.failures = 0
	t.lastSuccess = time.Time{}
	t.enabled = true
	t.mutex.Unlock()

	t.guard.Reset()
	t.events.Publish(status.ForceRefresh())
}

func (t *Tracker) State() State {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.stateLocked()
}

func (t *Tracker) stateLocked() State {
	switch {
	case t.enabled:
		return StateClosed
	case t.now().Sub(t.lastSuccess) >= t.cooldown, t.retryCount < t.maxRetries:
		return StateHalfOpen
	default:
		return StateOpen
	}
}

type Snapshot struct {
	State       State         `json:"state"`
	Enabled     bool          `json:"enabled"`
	RetryCount  int           `json:"retry_count"`
	MaxRetries  int           `json:"max_retries"`
	Failures    int           `json:"consecutive_failures"`
	LastSuccess time.Time     `json:"last_success"`
	Cooldown    time.Duration `json:"cooldown"`
}

func (t *Tracker) Snapshot() Snapshot {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return Snapshot{
		State:       t.stateLocked(),
		Enabled:     t.enabled,
		RetryCount:  t.retryCount,
		MaxRetries:  t.maxRetries,
		Failures:    t.failures,
		LastSuccess: t.lastSuccess,
		Cooldown:    t.cooldown,
	}
}
