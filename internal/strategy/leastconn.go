package strategy

import (
	"math"

	"github.com/angeloszaimis/highlights/internal/endpoint"
)

type leastConnStrategy struct{}

func (l *leastConnStrategy) SelectEndpoint(endpoints []*endpoint.Endpoint) *endpoint.Endpoint {
	if len(endpoints) == 0 {
		return nil
	}

	var best *endpoint.Endpoint
	bestActive := math.MaxInt32

	for _, e := range endpoints {
		active := e.ActiveRequests()
		if active < bestActive {
			bestActive = active
			best = e
		}
	}

	return best
}

func NewLeastConnStrategy() Strategy {
	return &leastConnStrategy{}
}
