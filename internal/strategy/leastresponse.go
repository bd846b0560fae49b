package strategy

import (
	"time"

	"github.com/angeloszaimis/highlights/internal/endpoint"
)

type leastResponseStrategy struct{}

// SelectEndpoint scores each endpoint by EWMA latency times (in-flight + 1).
// An endpoint with no samples yet is picked immediately so it gets measured.
func (l *leastResponseStrategy) SelectEndpoint(endpoints []*endpoint.Endpoint) *endpoint.Endpoint {
	if len(endpoints) == 0 {
		return nil
	}

	var chosen *endpoint.Endpoint
	var best time.Duration

	for _, e := range endpoints {
		ewma := e.EWMALatency()

		if ewma == 0 {
			return e
		}

		score := ewma * (time.Duration(e.ActiveRequests()) + 1)

		if chosen == nil || score < best {
			chosen = e
			best = score
		}
	}

	return chosen
}

func NewLeastResponseStrategy() Strategy {
	return &leastResponseStrategy{}
}
