package strategy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/highlights/internal/endpoint"
	"github.com/angeloszaimis/highlights/internal/strategy"
)

var _ = Describe("Table-Driven Strategy Tests", func() {
	DescribeTable("New builds every named strategy",
		func(name string) {
			strat, err := strategy.New(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(strat).NotTo(BeNil())
		},
		Entry("Round Robin", strategy.RoundRobin),
		Entry("Random", strategy.Random),
		Entry("Least Connections", strategy.LeastConn),
		Entry("Least Response Time", strategy.LeastResponse),
		Entry("default", ""),
	)

	It("should reject unknown strategy names", func() {
		_, err := strategy.New("consistent-hash")
		Expect(err).To(MatchError(ContainSubstring("consistent-hash")))
	})

	DescribeTable("All strategies select one of the given endpoints",
		func(name string) {
			strat, err := strategy.New(name)
			Expect(err).NotTo(HaveOccurred())
			endpoints := mirrors("http://localhost:9001", "http://localhost:9002", "http://localhost:9003")

			selected := strat.SelectEndpoint(endpoints)
			Expect(selected).NotTo(BeNil())
			Expect(endpoints).To(ContainElement(selected))
		},
		Entry("Round Robin", strategy.RoundRobin),
		Entry("Random", strategy.Random),
		Entry("Least Connections", strategy.LeastConn),
		Entry("Least Response Time", strategy.LeastResponse),
	)

	It("should plug into an endpoint pool", func() {
		endpoints := mirrors("http://localhost:9001", "http://localhost:9002")
		endpoints[0].SetHealthy(false)

		pool, err := endpoint.NewPool(strategy.NewRoundRobinStrategy(), endpoints...)
		Expect(err).NotTo(HaveOccurred())

		for range 3 {
			chosen, err := pool.Acquire()
			Expect(err).NotTo(HaveOccurred())
			Expect(chosen).To(Equal(endpoints[1]))
			chosen.Release()
		}
	})
})
