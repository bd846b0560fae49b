package strategy

import (
	"sync/atomic"

	"github.com/angeloszaimis/highlights/internal/endpoint"
)

type roundRobinStrategy struct {
	current uint64
}

func (rb *roundRobinStrategy) SelectEndpoint(endpoints []*endpoint.Endpoint) *endpoint.Endpoint {
	if len(endpoints) == 0 {
		return nil
	}

	n := atomic.AddUint64(&rb.current, 1)

	index := (n - 1) % uint64(len(endpoints))

	return endpoints[index]
}

func NewRoundRobinStrategy() Strategy {
	return &roundRobinStrategy{}
}
