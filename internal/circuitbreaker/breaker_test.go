package circuitbreaker_test

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/highlights/internal/circuitbreaker"
	"github.com/angeloszaimis/highlights/internal/notify"
	"github.com/angeloszaimis/highlights/internal/status"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var _ = Describe("Tracker", func() {
	var (
		tracker *circuitbreaker.Tracker
		guard   *notify.Guard
		bus     *status.Bus
		events  []status.Event
		clock   *fakeClock
	)

	BeforeEach(func() {
		guard = notify.NewGuard()
		bus = status.NewBus()
		events = nil
		_, err := bus.Subscribe(func(e status.Event) { events = append(events, e) })
		Expect(err).NotTo(HaveOccurred())

		clock = &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
		tracker = circuitbreaker.NewTracker(circuitbreaker.Config{
			MaxRetries:   3,
			Cooldown:     5 * time.Minute,
			DisableAfter: 2,
		}, guard, bus, circuitbreaker.WithClock(clock.Now))
	})

	// trip records a success now and then enough failures to disable the tracker.
	trip := func() {
		tracker.RecordSuccess()
		tracker.RecordFailure()
		Expect(tracker.RecordFailure()).To(BeTrue())
	}

	Describe("NewTracker", func() {
		It("should start enabled and closed", func() {
			Expect(tracker.State()).To(Equal(circuitbreaker.StateClosed))
			Expect(tracker.Snapshot().Enabled).To(BeTrue())
		})
	})

	Describe("ShouldRetry", func() {
		Context("when enabled", func() {
			It("should always allow the remote feed", func() {
				for i := 0; i < 10; i++ {
					Expect(tracker.ShouldRetry()).To(BeTrue())
				}
				Expect(tracker.Snapshot().RetryCount).To(BeZero())
			})

			It("should stay enabled when disabling is turned off", func() {
				tracker = circuitbreaker.NewTracker(circuitbreaker.Config{MaxRetries: 3, Cooldown: time.Minute}, guard, bus)
				for i := 0; i < 100; i++ {
					Expect(tracker.RecordFailure()).To(BeFalse())
				}
				Expect(tracker.ShouldRetry()).To(BeTrue())
				Expect(tracker.State()).To(Equal(circuitbreaker.StateClosed))
			})
		})

		Context("when disabled inside the cooldown", func() {
			BeforeEach(trip)

			It("should spend the retry budget then refuse", func() {
				Expect(tracker.State()).To(Equal(circuitbreaker.StateHalfOpen))

				Expect(tracker.ShouldRetry()).To(BeTrue())
				Expect(tracker.ShouldRetry()).To(BeTrue())
				Expect(tracker.ShouldRetry()).To(BeTrue())
				Expect(tracker.Snapshot().RetryCount).To(Equal(3))

				Expect(tracker.ShouldRetry()).To(BeFalse())
				Expect(tracker.State()).To(Equal(circuitbreaker.StateOpen))
			})

			It("should allow again once the cooldown has elapsed", func() {
				for i := 0; i < 3; i++ {
					tracker.ShouldRetry()
				}
				Expect(tracker.ShouldRetry()).To(BeFalse())

				clock.Advance(5 * time.Minute)
				Expect(tracker.ShouldRetry()).To(BeTrue())
				Expect(tracker.State()).To(Equal(circuitbreaker.StateHalfOpen))
			})

			It("should not spend retries while the cooldown is expired", func() {
				clock.Advance(10 * time.Minute)
				for i := 0; i < 10; i++ {
					Expect(tracker.ShouldRetry()).To(BeTrue())
				}
				Expect(tracker.Snapshot().RetryCount).To(BeZero())
			})
		})
	})

	Describe("RecordSuccess", func() {
		It("should close the circuit and reset counters", func() {
			trip()
			tracker.ShouldRetry()

			clock.Advance(time.Second)
			tracker.RecordSuccess()

			snap := tracker.Snapshot()
			Expect(snap.State).To(Equal(circuitbreaker.StateClosed))
			Expect(snap.RetryCount).To(BeZero())
			Expect(snap.Failures).To(BeZero())
			Expect(snap.LastSuccess).To(Equal(clock.Now()))
		})

		It("should clear the notification guard", func() {
			guard.MarkShown()
			tracker.RecordSuccess()
			Expect(guard.IsShown()).To(BeFalse())
		})

		It("should publish connected without asking for a refresh", func() {
			tracker.RecordSuccess()
			Expect(events).To(HaveLen(1))
			Expect(events[0].Kind).To(Equal(status.KindConnected))
			Expect(events[0].Refresh).To(BeFalse())
		})
	})

	Describe("RecordFailure", func() {
		It("should only report the failure that disables the tracker", func() {
			Expect(tracker.RecordFailure()).To(BeFalse())
			Expect(tracker.RecordFailure()).To(BeTrue())
			Expect(tracker.RecordFailure()).To(BeFalse())
			Expect(tracker.Snapshot().Failures).To(Equal(3))
		})
	})

	Describe("ForceReset", func() {
		BeforeEach(func() {
			trip()
			for i := 0; i < 3; i++ {
				tracker.ShouldRetry()
			}
			Expect(tracker.ShouldRetry()).To(BeFalse())
			guard.MarkShown()
			events = nil
		})

		It("should make the remote eligible no matter how often it is asked", func() {
			tracker.ForceReset()
			for i := 0; i < 1000; i++ {
				Expect(tracker.ShouldRetry()).To(BeTrue())
			}
		})

		It("should zero the state and clear the guard", func() {
			tracker.ForceReset()

			snap := tracker.Snapshot()
			Expect(snap.Enabled).To(BeTrue())
			Expect(snap.RetryCount).To(BeZero())
			Expect(snap.LastSuccess.IsZero()).To(BeTrue())
			Expect(guard.IsShown()).To(BeFalse())
		})

		It("should publish a forced refresh", func() {
			tracker.ForceReset()
			Expect(events).To(HaveLen(1))
			Expect(events[0].Kind).To(Equal(status.KindRefresh))
			Expect(events[0].Refresh).To(BeTrue())
		})
	})

	Describe("Concurrent access", func() {
		It("should handle concurrent callers safely", func() {
			var wg sync.WaitGroup
			wg.Add(150)
			for i := 0; i < 50; i++ {
				go func() { defer wg.Done(); tracker.RecordFailure() }()
				go func() { defer wg.Done(); tracker.ShouldRetry() }()
				go func() { defer wg.Done(); _ = tracker.Snapshot() }()
			}
			wg.Wait()

			Expect(tracker.State()).To(BeElementOf(
				circuitbreaker.StateClosed,
				circuitbreaker.StateOpen,
				circuitbreaker.StateHalfOpen,
			))
		})
	})

	Describe("State.String", func() {
		It("should return correct string representation", func() {
			Expect(circuitbreaker.StateClosed.String()).To(Equal("CLOSED"))
			Expect(circuitbreaker.StateOpen.String()).To(Equal("OPEN"))
			Expect(circuitbreaker.StateHalfOpen.String()).To(Equal("HALF-OPEN"))
			Expect(circuitbreaker.State(42).String()).To(Equal("UNKNOWN"))
		})
	})

	Describe("State text encoding", func() {
		It("should read back what it writes", func() {
			for _, state := range []circuitbreaker.State{
				circuitbreaker.StateClosed,
				circuitbreaker.StateOpen,
				circuitbreaker.StateHalfOpen,
			} {
				text, err := state.MarshalText()
				Expect(err).NotTo(HaveOccurred())

				var decoded circuitbreaker.State
				Expect(decoded.UnmarshalText(text)).To(Succeed())
				Expect(decoded).To(Equal(state))
			}
		})

		It("should reject unknown names", func() {
			var decoded circuitbreaker.State
			Expect(decoded.UnmarshalText([]byte("AJAR"))).NotTo(Succeed())
		})
	})
})
