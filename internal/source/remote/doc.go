// Package remote is the live highlights feed client. It downloads the feed
// from one of the configured mirror endpoints, maps feed entries onto
// highlight.Match values and answers every source.Source query by filtering
// that feed.
//
// Failures are reported with the structured kinds from package source:
// source.ErrForbidden for rejected credentials, source.ErrTimeout when the
// HTTP client gives up and source.ErrNetwork for transport or decoding
// problems. Any other non-2xx answer is a *StatusError.
package remote
