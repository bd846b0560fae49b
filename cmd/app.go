package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/highlights/config"
	"github.com/angeloszaimis/highlights/internal/circuitbreaker"
	"github.com/angeloszaimis/highlights/internal/endpoint"
	"github.com/angeloszaimis/highlights/internal/fallback"
	"github.com/angeloszaimis/highlights/internal/handler"
	"github.com/angeloszaimis/highlights/internal/healthcheck"
	"github.com/angeloszaimis/highlights/internal/highlights"
	"github.com/angeloszaimis/highlights/internal/metrics"
	"github.com/angeloszaimis/highlights/internal/notify"
	"github.com/angeloszaimis/highlights/internal/source/local"
	"github.com/angeloszaimis/highlights/internal/source/remote"
	"github.com/angeloszaimis/highlights/internal/status"
	"github.com/angeloszaimis/highlights/internal/strategy"
)

// app holds every long-lived component of the gateway.
type app struct {
	log       *slog.Logger
	cfg       *config.Config
	bus       *status.Bus
	guard     *notify.Guard
	tracker   *circuitbreaker.Tracker
	pool      *endpoint.Pool
	collector *metrics.Collector
	webhook   *notify.WebhookSink
	checker   *healthcheck.Checker
	service   *highlights.Service
	api       *handler.API
}

func buildApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{
		log:   log,
		cfg:   cfg,
		bus:   status.NewBus(),
		guard: notify.NewGuard(),
	}

	a.tracker = circuitbreaker.NewTracker(circuitbreaker.Config{
		MaxRetries:   cfg.Circuit.MaxRetries,
		Cooldown:     cfg.CircuitCooldown(),
		DisableAfter: cfg.Circuit.DisableAfter,
	}, a.guard, a.bus)

	sink, err := a.buildSink()
	if err != nil {
		return nil, err
	}

	a.collector = metrics.NewCollector(cfg.Metrics.BufferSize, log)

	endpoints, err := initializeEndpoints(cfg, log)
	if err != nil {
		return nil, err
	}

	strat, err := strategy.New(cfg.Remote.Strategy)
	if err != nil {
		return nil, err
	}

	a.pool, err = endpoint.NewPool(strat, endpoints...)
	if err != nil {
		return nil, err
	}

	feed := remote.New(log, a.pool, remote.Config{
		Token:   cfg.Remote.Token,
		Timeout: cfg.RemoteTimeout(),
	})

	dataset, err := local.Load(cfg.Local.Dataset)
	if err != nil {
		return nil, fmt.Errorf("load local dataset: %w", err)
	}
	log.Info("Local dataset loaded", slog.Int("matches", dataset.Len()))

	orch := fallback.NewOrchestrator(log, a.tracker, a.guard, a.bus, sink,
		fallback.WithTimeout(cfg.RemoteTimeout()),
		fallback.WithMetrics(a.collector))

	a.service, err = highlights.New(log, orch, a.tracker, a.bus, feed, dataset, highlights.Thresholds{
		Recommended: cfg.Thresholds.Recommended,
		Leagues:     cfg.Thresholds.Leagues,
		Default:     cfg.Thresholds.Default,
	})
	if err != nil {
		return nil, err
	}

	a.checker = healthcheck.New(log, endpoints, healthcheck.Config{
		Interval: cfg.HealthCheckInterval(),
		Path:     cfg.HealthCheck.Path,
	},
		healthcheck.WithMetrics(a.collector),
		healthcheck.OnRecover(func(e *endpoint.Endpoint) {
			a.service.ResetCooldown()
		}))

	return a, nil
}

func (a *app) buildSink() (notify.Sink, error) {
	logSink := notify.NewLogSink(a.log)
	if a.cfg.Notifications.WebhookURL == "" {
		return logSink, nil
	}

	webhook, err := notify.NewWebhookSink(a.log, notify.WebhookConfig{
		URL:           a.cfg.Notifications.WebhookURL,
		Token:         a.cfg.Notifications.WebhookToken,
		RatePerMinute: a.cfg.Notifications.RatePerMinute,
	})
	if err != nil {
		return nil, err
	}
	a.webhook = webhook

	return notify.MultiSink{logSink, webhook}, nil
}

// start launches the background workers. They stop when ctx ends; call
// wait afterwards to let the webhook drain.
func (a *app) start(ctx context.Context) {
	a.collector.Start(ctx)
	if a.webhook != nil {
		a.webhook.Start(ctx)
	}
	go a.checker.Run(ctx)
}

func (a *app) wait() {
	if a.webhook != nil {
		a.webhook.Close()
	}
}

func (a *app) router() http.Handler {
	a.api = handler.NewAPI(a.log, a.service, a.bus, a.pool)
	return setupRouter(a.log, a.api, a.collector, a.cfg.Remote.Strategy)
}

func initializeEndpoints(cfg *config.Config, log *slog.Logger) ([]*endpoint.Endpoint, error) {
	var endpoints []*endpoint.Endpoint

	for _, raw := range cfg.Remote.Endpoints {
		e, err := endpoint.Parse(raw)
		if err != nil {
			log.Error("Failed to parse feed endpoint",
				slog.String("url", notify.RedactURL(raw)),
				slog.Any("err", err))
			continue
		}
		endpoints = append(endpoints, e)
	}

	if len(endpoints) == 0 {
		return nil, endpoint.ErrNoEndpoints
	}

	return endpoints, nil
}
