package strategy_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/highlights/internal/endpoint"
	"github.com/angeloszaimis/highlights/internal/strategy"
)

var _ = Describe("Roundrobin", func() {
	var (
		strat     strategy.Strategy
		endpoints []*endpoint.Endpoint
	)

	BeforeEach(func() {
		strat = strategy.NewRoundRobinStrategy()
		endpoints = mirrors("http://localhost:9001", "http://localhost:9002", "http://localhost:9003")
	})

	Describe("SelectEndpoint", func() {
		Context("with several endpoints", func() {
			It("should cycle through endpoints in order", func() {
				Expect(strat.SelectEndpoint(endpoints)).To(Equal(endpoints[0]))
				Expect(strat.SelectEndpoint(endpoints)).To(Equal(endpoints[1]))
				Expect(strat.SelectEndpoint(endpoints)).To(Equal(endpoints[2]))
				Expect(strat.SelectEndpoint(endpoints)).To(Equal(endpoints[0]))
			})

			It("should distribute load evenly", func() {
				counts := make(map[string]int)
				for i := 0; i < 300; i++ {
					selected := strat.SelectEndpoint(endpoints)
					counts[selected.URL().String()]++
				}
				Expect(counts["http://localhost:9001"]).To(Equal(100))
				Expect(counts["http://localhost:9002"]).To(Equal(100))
				Expect(counts["http://localhost:9003"]).To(Equal(100))
			})
		})

		Context("with empty endpoint list", func() {
			It("should return nil", func() {
				Expect(strat.SelectEndpoint([]*endpoint.Endpoint{})).To(BeNil())
			})
		})
	})
})

var _ = Describe("LeastResponse", func() {
	var (
		strat     strategy.Strategy
		endpoints []*endpoint.Endpoint
	)

	BeforeEach(func() {
		strat = strategy.NewLeastResponseStrategy()
		endpoints = mirrors("http://localhost:9001", "http://localhost:9002", "http://localhost:9003")
	})

	It("should select the endpoint with the lowest EWMA latency", func() {
		endpoints[0].RecordLatency(100 * time.Millisecond)
		endpoints[1].RecordLatency(50 * time.Millisecond)
		endpoints[2].RecordLatency(200 * time.Millisecond)

		Expect(strat.SelectEndpoint(endpoints)).To(Equal(endpoints[1]))
	})

	It("should penalise endpoints with requests in flight", func() {
		endpoints[0].RecordLatency(50 * time.Millisecond)
		endpoints[1].RecordLatency(60 * time.Millisecond)
		endpoints[2].RecordLatency(200 * time.Millisecond)
		endpoints[0].Acquire()

		Expect(strat.SelectEndpoint(endpoints)).To(Equal(endpoints[1]))
	})

	It("should prefer an endpoint that was never measured", func() {
		endpoints[0].RecordLatency(10 * time.Millisecond)

		Expect(strat.SelectEndpoint(endpoints)).To(Equal(endpoints[1]))
	})

	It("should return nil for empty endpoint list", func() {
		Expect(strat.SelectEndpoint([]*endpoint.Endpoint{})).To(BeNil())
	})
})

var _ = Describe("Random", func() {
	var (
		strat     strategy.Strategy
		endpoints []*endpoint.Endpoint
	)

	BeforeEach(func() {
		strat = strategy.NewRandomStrategy()
		endpoints = mirrors("http://localhost:9001", "http://localhost:9002", "http://localhost:9003")
	})

	It("should select an endpoint", func() {
		selected := strat.SelectEndpoint(endpoints)
		Expect(selected).NotTo(BeNil())
		Expect(endpoints).To(ContainElement(selected))
	})

	It("should distribute across endpoints over multiple calls", func() {
		seen := make(map[*endpoint.Endpoint]bool)

		for i := 0; i < 100; i++ {
			seen[strat.SelectEndpoint(endpoints)] = true
		}

		Expect(len(seen)).To(BeNumerically(">=", 2))
	})

	It("should return nil for empty endpoint list", func() {
		Expect(strat.SelectEndpoint([]*endpoint.Endpoint{})).To(BeNil())
	})
})

func mirrors(rawURLs ...string) []*endpoint.Endpoint {
	out := make([]*endpoint.Endpoint, 0, len(rawURLs))
	for _, raw := range rawURLs {
		e, err := endpoint.Parse(raw)
		if err != nil {
			panic(err)
		}
		out = append(out, e)
	}
	return out
}
