// Package highlights is the entry point the HTTP API and the CLI use. It
// offers one method per query shape, each of which tries the live feed
// through the fallback orchestrator and never fails because of it, plus the
// two operator actions that make the live feed eligible again.
package highlights
