package notify

import (
	"context"
	"errors"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one leveled message. ID lets a renderer replace an earlier
// message with the same ID instead of stacking a new one.
type Notification struct {
	ID          string        `json:"id,omitempty"`
	Level       Level         `json:"level"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Duration    time.Duration `json:"duration"`
}

type Sink interface {
	Notify(ctx context.Context, n Notification) error
}

// MultiSink hands every notification to each sink in turn.
type MultiSink []Sink

func (m MultiSink) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, Notification) error { return nil }
