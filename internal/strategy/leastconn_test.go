package strategy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/highlights/internal/endpoint"
	"github.com/angeloszaimis/highlights/internal/strategy"
)

var _ = Describe("Leastconn", func() {
	var (
		strat     strategy.Strategy
		endpoints []*endpoint.Endpoint
	)

	BeforeEach(func() {
		strat = strategy.NewLeastConnStrategy()
		endpoints = mirrors("http://localhost:9001", "http://localhost:9002", "http://localhost:9003")
	})

	Describe("SelectEndpoint", func() {
		It("should select the endpoint with the fewest requests in flight", func() {
			endpoints[0].Acquire()
			endpoints[0].Acquire()
			endpoints[1].Acquire()

			Expect(strat.SelectEndpoint(endpoints)).To(Equal(endpoints[2]))
		})

		It("should keep the first endpoint on ties", func() {
			Expect(strat.SelectEndpoint(endpoints)).To(Equal(endpoints[0]))
		})
	})
})
