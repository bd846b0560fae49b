package highlights_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/highlights/internal/circuitbreaker"
	"github.com/angeloszaimis/highlights/internal/endpoint"
	"github.com/angeloszaimis/highlights/internal/fallback"
	"github.com/angeloszaimis/highlights/internal/highlight"
	"github.com/angeloszaimis/highlights/internal/highlights"
	"github.com/angeloszaimis/highlights/internal/notify"
	"github.com/angeloszaimis/highlights/internal/source"
	"github.com/angeloszaimis/highlights/internal/source/local"
	"github.com/angeloszaimis/highlights/internal/source/remote"
	"github.com/angeloszaimis/highlights/internal/status"
	"github.com/angeloszaimis/highlights/internal/strategy"
)

const feedToken = "SECRET-TOKEN-123"

type messages struct {
	mu  sync.Mutex
	all []string
}

func (m *messages) record(e status.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.all = append(m.all, e.ErrorMessage)
}

func (m *messages) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.all...)
}

func newGatewayService(feed source.Source, circuit circuitbreaker.Config) (*highlights.Service, *circuitbreaker.Tracker, *messages) {
	logger := slog.New(slog.NewTextHandler(GinkgoWriter, &slog.HandlerOptions{Level: slog.LevelError}))

	demo, err := local.Embedded()
	Expect(err).NotTo(HaveOccurred())

	guard := notify.NewGuard()
	bus := status.NewBus()
	seen := &messages{}
	_, err = bus.Subscribe(seen.record)
	Expect(err).NotTo(HaveOccurred())

	tracker := circuitbreaker.NewTracker(circuit, guard, bus)
	orch := fallback.NewOrchestrator(logger, tracker, guard, bus, notify.Discard{},
		fallback.WithTimeout(time.Second))

	svc, err := highlights.New(logger, orch, tracker, bus, feed, demo, highlights.DefaultThresholds())
	Expect(err).NotTo(HaveOccurred())

	return svc, tracker, seen
}

var _ = Describe("Service with an unreachable feed", func() {
	It("should not expose the feed token to status listeners", func() {
		dead := httptest.NewServer(http.NotFoundHandler())
		deadURL := dead.URL
		dead.Close()

		e, err := endpoint.Parse(deadURL)
		Expect(err).NotTo(HaveOccurred())
		pool, err := endpoint.NewPool(strategy.NewRoundRobinStrategy(), e)
		Expect(err).NotTo(HaveOccurred())
		client := remote.New(slog.New(slog.NewTextHandler(GinkgoWriter, nil)), pool,
			remote.Config{Token: feedToken, Timeout: time.Second})

		svc, _, seen := newGatewayService(client, circuitbreaker.Config{MaxRetries: 3, Cooldown: time.Minute})

		matches, err := svc.Recommended(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).NotTo(BeEmpty())

		report := svc.Report()
		Expect(report.Mode).To(Equal(highlights.ModeDemo))
		Expect(report.LastError).To(Equal("recommended: Network problem"))
		Expect(seen.List()).NotTo(BeEmpty())
		for _, msg := range seen.List() {
			Expect(msg).NotTo(ContainSubstring(feedToken))
		}
	})
})

var _ = Describe("Service match lookups", func() {
	It("should keep the live feed enabled after repeated unknown ids", func() {
		feed := &stubFeed{matches: []highlight.Match{
			liveMatch("live-1", "Arsenal", "Chelsea", "ENGLAND: Premier League"),
			liveMatch("live-2", "Everton", "Fulham", "ENGLAND: Premier League"),
			liveMatch("live-3", "Lyon", "Nice", "FRANCE: Ligue 1"),
		}}
		svc, tracker, _ := newGatewayService(feed, circuitbreaker.Config{
			MaxRetries:   1,
			Cooldown:     time.Hour,
			DisableAfter: 1,
		})
		ctx := context.Background()

		for _, id := range []string{"typo-1", "typo-2", "typo-3"} {
			_, err := svc.Match(ctx, id)
			Expect(err).To(MatchError(source.ErrNotFound))
		}
		Expect(tracker.Snapshot().Enabled).To(BeTrue())

		matches, err := svc.Recommended(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(matches[0].ID).To(Equal("live-1"))
		Expect(svc.Mode()).To(Equal(highlights.ModeLive))
	})
})
