package healthcheck

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/angeloszaimis/highlights/internal/endpoint"
	"github.com/angeloszaimis/highlights/internal/metrics"
)

const (
	DefaultPath    = "/health"
	defaultTimeout = 5 * time.Second
)

type Config struct {
	Interval time.Duration
	Path     string
	Timeout  time.Duration
}

type Option func(*Checker)

// WithMetrics reports every health transition to collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Checker) {
		c.metrics = collector
	}
}

// OnRecover is called, on the probing goroutine, each time an endpoint goes
// from down to up.
func OnRecover(fn func(*endpoint.Endpoint)) Option {
	return func(c *Checker) {
		c.onRecover = fn
	}
}

type Checker struct {
	client    *http.Client
	endpoints []*endpoint.Endpoint
	interval  time.Duration
	path      string
	logger    *slog.Logger
	metrics   *metrics.Collector
	onRecover func(*endpoint.Endpoint)
}

func New(logger *slog.Logger, endpoints []*endpoint.Endpoint, cfg Config, opts ...Option) *Checker {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Checker{
		client:    &http.Client{Timeout: timeout},
		endpoints: endpoints,
		interval:  cfg.Interval,
		path:      path,
		logger:    logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run checks every endpoint on its own ticker until ctx ends. It returns
// immediately when the interval is not positive.
func (c *Checker) Run(ctx context.Context) {
	if c.interval <= 0 {
		c.logger.Info("Health checks disabled")
		return
	}

	var wg sync.WaitGroup
	for _, e := range c.endpoints {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.watch(ctx, e)
		}()
	}
	wg.Wait()
}

func (c *Checker) watch(ctx context.Context, e *endpoint.Endpoint) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Health check stopped",
				slog.String("endpoint", e.URL().Redacted()))
			return

		case <-ticker.C:
			c.Check(ctx, e)
		}
	}
}

// Check tests e once, updates its health and reports whether it is healthy.
func (c *Checker) Check(ctx context.Context, e *endpoint.Endpoint) bool {
	healthy := c.ping(ctx, e)
	if ctx.Err() != nil {
		return e.IsHealthy()
	}

	if !e.SetHealthy(healthy) {
		return healthy
	}

	c.emit(e, healthy)

	if healthy {
		c.logger.Info("Endpoint is back up",
			slog.String("endpoint", e.URL().Redacted()))
		if c.onRecover != nil {
			c.onRecover(e)
		}
	} else {
		c.logger.Warn("Endpoint is down",
			slog.String("endpoint", e.URL().Redacted()))
	}

	return healthy
}

func (c *Checker) ping(ctx context.Context, e *endpoint.Endpoint) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.Resolve(c.path).String(), nil)
	if err != nil {
		return false
	}

	start := time.Now()
	res, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}()

	if res.StatusCode != http.StatusOK {
		return false
	}

	e.RecordLatency(time.Since(start))
	return true
}

func (c *Checker) emit(e *endpoint.Endpoint, healthy bool) {
	if c.metrics == nil {
		return
	}

	c.metrics.Emit(metrics.FetchEvent{
		Type:      metrics.EventHealthChanged,
		Timestamp: time.Now(),
		Endpoint:  e.URL().Redacted(),
		Healthy:   healthy,
	})
}
