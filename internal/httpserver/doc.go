// Package httpserver wraps http.Server with address validation and a
// graceful shutdown bound to a context.
package httpserver
