// Package healthcheck periodically checks the remote feed mirrors. It keeps
// each endpoint's health flag current so the pool only selects live mirrors,
// and reports the moment a mirror comes back so the service can reset its
// cooldown.
package healthcheck
