package notify

import (
	"context"
	"log/slog"
)

// LogSink writes notifications to the application log.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(ctx context.Context, n Notification) error {
	s.logger.Log(ctx, slogLevel(n.Level), n.Title,
		slog.String("description", n.Description),
		slog.String("notification_id", n.ID),
		slog.Duration("duration", n.Duration))
	return nil
}

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
