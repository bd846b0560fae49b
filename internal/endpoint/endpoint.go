package endpoint

import (
	"net/url"
	"sync"
	"time"
)

// Endpoint is one base URL of the remote feed.
type Endpoint struct {
	url            *url.URL
	mutex          sync.Mutex
	isHealthy      bool
	activeRequests int
	ewmaLatency    time.Duration
	hasEWMA        bool
}

const ewmaAlpha = 0.2

// New creates an Endpoint for u. It starts healthy.
func New(u *url.URL) *Endpoint {
	return &Endpoint{
		url:       u,
		isHealthy: true,
	}
}

// Parse builds an Endpoint from a raw base URL.
func Parse(rawURL string) (*Endpoint, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return New(u), nil
}

func (e *Endpoint) URL() *url.URL {
	return e.url
}

// Resolve joins path onto the endpoint's base URL.
func (e *Endpoint) Resolve(path string) *url.URL {
	return e.url.JoinPath(path)
}

func (e *Endpoint) Acquire() {
	e.mutex.Lock()
	e.activeRequests++
	e.mutex.Unlock()
}

func (e *Endpoint) Release() {
	e.mutex.Lock()
	if e.activeRequests > 0 {
		e.activeRequests--
	}
	e.mutex.Unlock()
}

func (e *Endpoint) ActiveRequests() int {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.activeRequests
}

func (e *Endpoint) IsHealthy() bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.isHealthy
}

// SetHealthy updates the health flag and reports whether it changed.
func (e *Endpoint) SetHealthy(healthy bool) (changed bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.isHealthy == healthy {
		return false
	}

	e.isHealthy = healthy
	return true
}

// RecordLatency folds d into the EWMA response time.
func (e *Endpoint) RecordLatency(d time.Duration) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.hasEWMA {
		e.ewmaLatency = d
		e.hasEWMA = true
		return
	}
	//ewma = (1 - α) * ewma + α * latest
	e.ewmaLatency = time.Duration((1-ewmaAlpha)*float64(e.ewmaLatency) + ewmaAlpha*float64(d))
}

// EWMALatency is zero until the first response is recorded.
func (e *Endpoint) EWMALatency() time.Duration {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.hasEWMA {
		return 0
	}

	return e.ewmaLatency
}

type Status struct {
	URL            string        `json:"url"`
	Healthy        bool          `json:"healthy"`
	ActiveRequests int           `json:"active_requests"`
	EWMALatency    time.Duration `json:"ewma_latency"`
}

func (e *Endpoint) Status() Status {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return Status{
		URL:            e.url.Redacted(),
		Healthy:        e.isHealthy,
		ActiveRequests: e.activeRequests,
		EWMALatency:    e.ewmaLatency,
	}
}
