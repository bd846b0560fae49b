// Package logger builds the application's structured logger. It wraps the
// standard log/slog package: JSON output in production, text everywhere
// else, always tagged with the service name and environment.
package logger
