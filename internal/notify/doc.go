// Package notify delivers user facing notifications about the remote
// highlight source and keeps them from repeating.
//
// A Guard remembers whether an error notification is already on screen for
// the current failure streak. Sinks decide where notifications go: the
// application log, an HTTP webhook, or several of them at once.
package notify
