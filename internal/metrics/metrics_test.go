package metrics_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/highlights/internal/metrics"
)

var _ = Describe("Metrics", func() {
	var m *metrics.Metrics

	BeforeEach(func() {
		m = metrics.NewMetrics()
	})

	Describe("NewMetrics", func() {
		It("should create a new metrics instance", func() {
			Expect(m).NotTo(BeNil())
			snap := m.Snapshot("round-robin")
			Expect(snap.TotalFetches).To(BeZero())
			Expect(snap.Queries).To(BeEmpty())
		})
	})

	Describe("RecordAttempt", func() {
		It("should track query shapes separately", func() {
			m.RecordAttempt("recommended")
			m.RecordAttempt("search")
			m.RecordAttempt("recommended")

			snap := m.Snapshot("round-robin")
			Expect(snap.TotalFetches).To(Equal(int64(3)))
			Expect(snap.Queries["recommended"].RemoteAttempts).To(Equal(int64(2)))
			Expect(snap.Queries["search"].RemoteAttempts).To(Equal(int64(1)))
		})
	})

	Describe("RecordSkipped", func() {
		It("should count skipped calls as fetches", func() {
			m.RecordSkipped("leagues")
			m.RecordFallback("leagues")

			snap := m.Snapshot("round-robin")
			Expect(snap.TotalFetches).To(Equal(int64(1)))
			Expect(snap.Queries["leagues"].RemoteSkipped).To(Equal(int64(1)))
			Expect(snap.Queries["leagues"].FallbacksServed).To(Equal(int64(1)))
		})
	})

	Describe("RecordSuccess and RecordFailure", func() {
		It("should record latency and failure categories", func() {
			m.RecordSuccess("recommended", 100*time.Millisecond)
			m.RecordFailure("recommended", "timeout", 200*time.Millisecond)
			m.RecordFailure("recommended", "timeout", 300*time.Millisecond)
			m.RecordFailure("recommended", "access_denied", 0)

			q := m.Snapshot("round-robin").Queries["recommended"]
			Expect(q.RemoteSuccesses).To(Equal(int64(1)))
			Expect(q.Failures).To(HaveKeyWithValue("timeout", int64(2)))
			Expect(q.Failures).To(HaveKeyWithValue("access_denied", int64(1)))
			Expect(q.AvgLatency).To(Equal(200 * time.Millisecond))
		})

		It("should compute percentiles", func() {
			for i := 1; i <= 100; i++ {
				m.RecordSuccess("search", time.Duration(i)*time.Millisecond)
			}

			q := m.Snapshot("round-robin").Queries["search"]
			Expect(q.P50Latency).To(Equal(51 * time.Millisecond))
			Expect(q.P95Latency).To(Equal(96 * time.Millisecond))
			Expect(q.P99Latency).To(Equal(100 * time.Millisecond))
		})

		It("should keep a bounded latency window", func() {
			for i := 0; i < 1500; i++ {
				m.RecordSuccess("match", time.Second)
			}
			m.RecordSuccess("match", time.Second)

			q := m.Snapshot("round-robin").Queries["match"]
			Expect(q.RemoteSuccesses).To(Equal(int64(1501)))
			Expect(q.AvgLatency).To(Equal(time.Second))
		})
	})

	Describe("UpdateEndpointHealth", func() {
		It("should report the latest health per endpoint", func() {
			m.UpdateEndpointHealth("https://feed-a.example.com", true)
			m.UpdateEndpointHealth("https://feed-b.example.com", true)
			m.UpdateEndpointHealth("https://feed-a.example.com", false)

			snap := m.Snapshot("least-response")
			Expect(snap.Strategy).To(Equal("least-response"))
			Expect(snap.Endpoints).To(HaveKeyWithValue("https://feed-a.example.com", false))
			Expect(snap.Endpoints).To(HaveKeyWithValue("https://feed-b.example.com", true))
		})
	})

	Describe("Snapshot", func() {
		It("should not share maps with the live metrics", func() {
			m.RecordFailure("team", "network", time.Millisecond)
			snap := m.Snapshot("round-robin")
			snap.Queries["team"].Failures["network"] = 99

			Expect(m.Snapshot("round-robin").Queries["team"].Failures["network"]).To(Equal(int64(1)))
		})
	})
})
