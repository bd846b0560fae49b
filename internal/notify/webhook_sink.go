package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	defaultWebhookTimeout    = 5 * time.Second
	defaultWebhookBufferSize = 64
	webhookMaxRetries        = 2
	webhookUserAgent         = "highlights-gateway/v1"
)

var (
	ErrWebhookBufferFull = errors.New("notify: webhook buffer full")
	ErrRateLimited       = errors.New("notify: webhook rate limited")
)

// WebhookEnvelope is the JSON body POSTed for each notification.
type WebhookEnvelope struct {
	DeliveryID   string       `json:"deliveryId"`
	Type         string       `json:"type"`
	Timestamp    string       `json:"timestamp"`
	Notification Notification `json:"notification"`
}

type WebhookConfig struct {
	URL           string
	Token         string
	Timeout       time.Duration
	RatePerMinute int
	BufferSize    int
}

// WebhookSink forwards notifications to an HTTP endpoint from a background
// worker. Notify never blocks; when the buffer is full or the rate limit is
// exhausted the notification is dropped.
type WebhookSink struct {
	httpClient *http.Client
	logger     *slog.Logger
	url        string
	token      string
	limiter    *rate.Limiter
	sendCh     chan WebhookEnvelope
	wg         sync.WaitGroup
}

func NewWebhookSink(logger *slog.Logger, cfg WebhookConfig) (*WebhookSink, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("webhook URL must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("webhook URL must include a host")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultWebhookBufferSize
	}

	limit := rate.Inf
	burst := 1
	if cfg.RatePerMinute > 0 {
		limit = rate.Limit(float64(cfg.RatePerMinute) / 60.0)
		burst = max(1, cfg.RatePerMinute/10)
	}

	return &WebhookSink{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "webhook-sink")),
		url:        cfg.URL,
		token:      cfg.Token,
		limiter:    rate.NewLimiter(limit, burst),
		sendCh:     make(chan WebhookEnvelope, bufferSize),
	}, nil
}

// Start launches the delivery worker. It drains queued notifications once ctx ends.
func (s *WebhookSink) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.worker(ctx)
	s.logger.Info("Webhook sink started", slog.String("url", RedactURL(s.url)))
}

// Close waits for the worker to finish draining. Call after the Start context is cancelled.
func (s *WebhookSink) Close() {
	s.wg.Wait()
}

func (s *WebhookSink) Notify(ctx context.Context, n Notification) error {
	if !s.limiter.Allow() {
		s.logger.Debug("Webhook notification rate limited", slog.String("title", n.Title))
		return ErrRateLimited
	}

	envelope := WebhookEnvelope{
		DeliveryID:   uuid.NewString(),
		Type:         "highlights.notification",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Notification: n,
	}

	select {
	case s.sendCh <- envelope:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.logger.Warn("Webhook buffer full, dropping notification", slog.String("title", n.Title))
		return ErrWebhookBufferFull
	}
}

func (s *WebhookSink) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case envelope := <-s.sendCh:
					s.drainOne(envelope)
				default:
					return
				}
			}
		case envelope := <-s.sendCh:
			if ctx.Err() != nil {
				s.drainOne(envelope)
				continue
			}
			if err := s.send(ctx, envelope); err != nil {
				s.logger.Error("Webhook send failed",
					slog.String("url", RedactURL(s.url)),
					slog.Any("err", err))
			}
		}
	}
}

// drainOne delivers a queued envelope after shutdown started, bounded by the client timeout.
func (s *WebhookSink) drainOne(envelope WebhookEnvelope) {
	ctx, cancel := context.WithTimeout(context.Background(), s.httpClient.Timeout)
	defer cancel()

	if err := s.send(ctx, envelope); err != nil {
		s.logger.Warn("Webhook send failed during shutdown drain", slog.Any("err", err))
	}
}

func (s *WebhookSink) send(ctx context.Context, envelope WebhookEnvelope) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	var lastErr error
	for attempt := range webhookMaxRetries + 1 {
		if attempt > 0 {
			timer := time.NewTimer(time.Duration(attempt) * 100 * time.Millisecond)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("context cancelled during backoff: %w", ctx.Err())
			}
		}

		lastErr = s.post(ctx, body)
		if lastErr == nil {
			return nil
		}

		var se *webhookStatusError
		if errors.As(lastErr, &se) && se.status < 500 {
			return lastErr
		}
	}

	return fmt.Errorf("webhook send failed after %d attempts: %w", webhookMaxRetries+1, lastErr)
}

func (s *WebhookSink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", webhookUserAgent)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &webhookStatusError{status: resp.StatusCode}
}

type webhookStatusError struct {
	status int
}

func (e *webhookStatusError) Error() string {
	return fmt.Sprintf("webhook returned HTTP %d", e.status)
}

// RedactURL masks credentials and query values in a URL for logging.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			q.Set(key, "REDACTED")
		}
		u.RawQuery = q.Encode()
	}
	return u.Redacted()
}
