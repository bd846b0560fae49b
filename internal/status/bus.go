package status

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindConnected Kind = "connected"
	KindError     Kind = "error"
	KindRefresh   Kind = "refresh"
)

// Event is a connectivity transition. Refresh tells listeners whether they
// should fetch again on their own; it is false for transitions that the
// fetch itself produced.
type Event struct {
	Kind         Kind      `json:"kind"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	Refresh      bool      `json:"refresh"`
	At           time.Time `json:"at"`
}

func Connected() Event {
	return Event{Kind: KindConnected, Refresh: false}
}

func Failed(message string) Event {
	return Event{Kind: KindError, ErrorMessage: message, Refresh: false}
}

func ForceRefresh() Event {
	return Event{Kind: KindRefresh, Refresh: true}
}

type Handler func(Event)

var (
	ErrNilHandler         = errors.New("status: nil handler")
	ErrSubscriberNotFound = errors.New("status: subscriber not found")
	ErrBusClosed          = errors.New("status: bus closed")
)

// Publisher is the write side of the bus.
type Publisher interface {
	Publish(Event)
}

type subscriber struct {
	id      string
	handler Handler
}

type Bus struct {
	mu          sync.RWMutex
	subscribers []subscriber
	published   atomic.Uint64
	closed      bool
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler and returns the id to unsubscribe with.
func (b *Bus) Subscribe(handler Handler) (string, error) {
	if handler == nil {
		return "", ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return "", ErrBusClosed
	}

	id := uuid.NewString()
	b.subscribers = append(b.subscribers, subscriber{id: id, handler: handler})
	return id, nil
}

func (b *Bus) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subscribers {
		if s.id == id {
			b.subscribers = append(b.subscribers[:i:i], b.subscribers[i+1:]...)
			return nil
		}
	}

	return ErrSubscriberNotFound
}

// Publish delivers event to every current subscriber in registration order,
// on the caller's goroutine. Handlers run outside the lock so they may
// subscribe, unsubscribe or publish themselves.
func (b *Bus) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	handlers := make([]Handler, len(b.subscribers))
	for i, s := range b.subscribers {
		handlers[i] = s.handler
	}
	b.mu.RUnlock()

	b.published.Add(1)

	for _, h := range handlers {
		h(event)
	}
}

func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *Bus) Published() uint64 {
	return b.published.Load()
}

// Close drops all subscribers. Later publishes are ignored and later
// subscriptions fail with ErrBusClosed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.subscribers = nil
}
