package strategy

import (
	"math/rand/v2"

	"github.com/angeloszaimis/highlights/internal/endpoint"
)

type randomStrategy struct{}

func (r *randomStrategy) SelectEndpoint(endpoints []*endpoint.Endpoint) *endpoint.Endpoint {
	if len(endpoints) == 0 {
		return nil
	}

	return endpoints[rand.IntN(len(endpoints))]
}

func NewRandomStrategy() Strategy {
	return &randomStrategy{}
}
