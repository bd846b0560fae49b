package deadline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// TimeoutError is returned when the timer fires before the call settles.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %s", e.Duration)
}

// Timeout lets callers detect the error through interface checks such as net.Error.
func (e *TimeoutError) Timeout() bool { return true }

func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

type outcome[T any] struct {
	value T
	err   error
}

var armed atomic.Int64

// ArmedTimers returns the number of race timers that have not been stopped yet.
func ArmedTimers() int64 {
	return armed.Load()
}

// Race runs op and waits for whichever comes first: op settling, the timeout
// elapsing, or ctx ending. The timer is stopped on every path.
func Race[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	// Buffered so a late op can always deliver and exit.
	done := make(chan outcome[T], 1)

	go func() {
		v, err := op(ctx)
		done <- outcome[T]{value: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	armed.Add(1)
	defer func() {
		timer.Stop()
		armed.Add(-1)
	}()

	var zero T

	select {
	case out := <-done:
		return out.value, out.err
	case <-timer.C:
		return zero, &TimeoutError{Duration: timeout}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
