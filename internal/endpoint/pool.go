package endpoint

import (
	"errors"
	"sync"
)

var (
	ErrNoEndpoints        = errors.New("endpoint: no endpoints configured")
	ErrNoHealthyEndpoints = errors.New("endpoint: no healthy endpoints")
)

// Selector picks one endpoint from a non-empty list of healthy ones.
type Selector interface {
	SelectEndpoint(endpoints []*Endpoint) *Endpoint
}

type Pool struct {
	endpoints []*Endpoint
	selector  Selector
	mutex     sync.Mutex
}

func NewPool(selector Selector, endpoints ...*Endpoint) (*Pool, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	return &Pool{
		endpoints: endpoints,
		selector:  selector,
	}, nil
}

// Acquire selects a healthy endpoint and counts the caller as an active
// request on it. The caller must Release the endpoint when done.
func (p *Pool) Acquire() (*Endpoint, error) {
	p.mutex.Lock()

	healthy := p.healthy()
	if len(healthy) == 0 {
		p.mutex.Unlock()
		return nil, ErrNoHealthyEndpoints
	}

	chosen := p.selector.SelectEndpoint(healthy)
	p.mutex.Unlock()

	if chosen == nil {
		return nil, errors.New("endpoint: selector returned nil endpoint")
	}

	chosen.Acquire()
	return chosen, nil
}

func (p *Pool) Endpoints() []*Endpoint {
	out := make([]*Endpoint, len(p.endpoints))
	copy(out, p.endpoints)
	return out
}

func (p *Pool) Statuses() []Status {
	out := make([]Status, 0, len(p.endpoints))
	for _, e := range p.endpoints {
		out = append(out, e.Status())
	}
	return out
}

// AnyHealthy reports whether at least one endpoint is currently healthy.
func (p *Pool) AnyHealthy() bool {
	for _, e := range p.endpoints {
		if e.IsHealthy() {
			return true
		}
	}
	return false
}

func (p *Pool) healthy() []*Endpoint {
	healthy := make([]*Endpoint, 0, len(p.endpoints))

	for _, e := range p.endpoints {
		if e.IsHealthy() {
			healthy = append(healthy, e)
		}
	}

	return healthy
}
