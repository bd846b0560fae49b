package fallback

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angeloszaimis/highlights/internal/deadline"
	"github.com/angeloszaimis/highlights/internal/notify"
	"github.com/angeloszaimis/highlights/internal/source"
)

type Category string

const (
	CategoryAccessDenied Category = "access_denied"
	CategoryTimeout      Category = "timeout"
	CategoryNetwork      Category = "network"
	CategoryConnection   Category = "connection"
	CategoryInsufficient Category = "insufficient_data"
)

// Classify maps a remote error to a notification category. Structured kinds
// win; message matching is the last resort for clients that only return text.
func Classify(err error) Category {
	var timeout interface{ Timeout() bool }

	switch {
	case err == nil:
		return CategoryConnection
	case errors.Is(err, source.ErrForbidden):
		return CategoryAccessDenied
	case deadline.IsTimeout(err), errors.Is(err, source.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.As(err, &timeout) && timeout.Timeout():
		return CategoryTimeout
	case errors.Is(err, source.ErrNetwork):
		return CategoryNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "403", "401", "forbidden", "unauthorized"):
		return CategoryAccessDenied
	case containsAny(msg, "timed out", "timeout"):
		return CategoryTimeout
	case containsAny(msg, "failed to fetch", "connection refused", "no such host", "network", "unexpected end of json", "invalid character"):
		return CategoryNetwork
	default:
		return CategoryConnection
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

const notificationID = "highlights-feed-status"

func notificationFor(c Category) notify.Notification {
	n := notify.Notification{ID: notificationID}

	switch c {
	case CategoryAccessDenied:
		n.Level = notify.LevelError
		n.Title = "Highlights feed access denied"
		n.Description = "The highlights provider rejected our credentials. Showing demo highlights instead."
		n.Duration = 8 * time.Second
	case CategoryTimeout:
		n.Level = notify.LevelWarning
		n.Title = "Highlights feed is slow"
		n.Description = "The highlights provider did not answer in time. Showing demo highlights instead."
		n.Duration = 5 * time.Second
	case CategoryNetwork:
		n.Level = notify.LevelError
		n.Title = "Network problem"
		n.Description = "Could not reach the highlights provider. Showing demo highlights instead."
		n.Duration = 8 * time.Second
	case CategoryInsufficient:
		n.Level = notify.LevelWarning
		n.Title = "Limited live highlights"
		n.Description = "The highlights provider returned too few results. Showing demo highlights instead."
		n.Duration = 5 * time.Second
	default:
		n.Level = notify.LevelError
		n.Title = "Connection error"
		n.Description = "Something went wrong talking to the highlights provider. Showing demo highlights instead."
		n.Duration = 8 * time.Second
	}

	return n
}

func recoveredNotification() notify.Notification {
	return notify.Notification{
		ID:          notificationID,
		Level:       notify.LevelSuccess,
		Title:       "Live highlights restored",
		Description: "Connected to the highlights provider again.",
		Duration:    3 * time.Second,
	}
}
