package strategy

import (
	"fmt"

	"github.com/angeloszaimis/highlights/internal/endpoint"
)

const (
	RoundRobin    = "round-robin"
	Random        = "random"
	LeastConn     = "least-conn"
	LeastResponse = "least-response"
)

type Strategy interface {
	SelectEndpoint(endpoints []*endpoint.Endpoint) *endpoint.Endpoint
}

// Names lists every strategy New accepts.
func Names() []string {
	return []string{RoundRobin, Random, LeastConn, LeastResponse}
}

func New(name string) (Strategy, error) {
	switch name {
	case RoundRobin, "":
		return NewRoundRobinStrategy(), nil
	case Random:
		return NewRandomStrategy(), nil
	case LeastConn:
		return NewLeastConnStrategy(), nil
	case LeastResponse:
		return NewLeastResponseStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
