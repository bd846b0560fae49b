// Package handler implements the HTTP JSON API in front of the highlights
// service, the server-sent event stream of connectivity changes and the
// request logging middleware.
package handler
