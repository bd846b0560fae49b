package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/angeloszaimis/highlights/internal/endpoint"
	"github.com/angeloszaimis/highlights/internal/highlight"
	"github.com/angeloszaimis/highlights/internal/source"
)

const (
	FeedPath         = "/video-api/v3/"
	defaultTimeout   = 10 * time.Second
	maxFeedBodyBytes = 8 << 20
	userAgent        = "highlights-gateway/v1"
)

// StatusError is a non-2xx feed answer that is not an auth failure.
type StatusError struct {
	Code     int
	Endpoint string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed %s returned HTTP %d", e.Endpoint, e.Code)
}

type Config struct {
	Token   string
	Timeout time.Duration
}

type Client struct {
	httpClient *http.Client
	pool       *endpoint.Pool
	token      string
	logger     *slog.Logger
}

var _ source.Source = (*Client)(nil)

func New(logger *slog.Logger, pool *endpoint.Pool, cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		pool:       pool,
		token:      cfg.Token,
		logger:     logger.With(slog.String("component", "remote-feed")),
	}
}

func (c *Client) Recommended(ctx context.Context) ([]highlight.Match, error) {
	return c.feed(ctx)
}

func (c *Client) Leagues(ctx context.Context) ([]highlight.League, error) {
	matches, err := c.feed(ctx)
	if err != nil {
		return nil, err
	}
	return highlight.GroupByCompetition(matches), nil
}

func (c *Client) Match(ctx context.Context, id string) (highlight.Match, error) {
	matches, err := c.feed(ctx)
	if err != nil {
		return highlight.Match{}, err
	}

	for _, m := range matches {
		if m.ID == id {
			return m, nil
		}
	}
	return highlight.Match{}, fmt.Errorf("match %q: %w", id, source.ErrNotFound)
}

func (c *Client) TeamHighlights(ctx context.Context, teamID string) ([]highlight.Match, error) {
	matches, err := c.feed(ctx)
	if err != nil {
		return nil, err
	}
	return highlight.FilterByTeam(matches, teamID), nil
}

func (c *Client) Search(ctx context.Context, query string) ([]highlight.Match, error) {
	matches, err := c.feed(ctx)
	if err != nil {
		return nil, err
	}
	return highlight.Search(matches, query), nil
}

func (c *Client) CompetitionHighlights(ctx context.Context, competitionID string) ([]highlight.Match, error) {
	matches, err := c.feed(ctx)
	if err != nil {
		return nil, err
	}
	return highlight.FilterByCompetition(matches, competitionID), nil
}

// feed downloads and decodes the whole feed from one healthy mirror.
func (c *Client) feed(ctx context.Context) ([]highlight.Match, error) {
	ep, err := c.pool.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrNetwork, err)
	}
	defer ep.Release()

	feedURL := ep.Resolve(FeedPath)
	if c.token != "" {
		q := feedURL.Query()
		q.Set("token", c.token)
		feedURL.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, ep, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	ep.RecordLatency(time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d from %s", source.ErrForbidden, resp.StatusCode, ep.URL().Redacted())
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &StatusError{Code: resp.StatusCode, Endpoint: ep.URL().Redacted()}
	}

	var body feedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode feed: %w", source.ErrNetwork, err)
	}

	matches := toMatches(body.Response)
	c.logger.Debug("Feed downloaded",
		slog.String("endpoint", ep.URL().Redacted()),
		slog.Int("matches", len(matches)),
		slog.Duration("elapsed", time.Since(start)))

	return matches, nil
}

func (c *Client) transportError(ctx context.Context, ep *endpoint.Endpoint, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	// The *url.Error text carries the request URL and with it the token.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %w", source.ErrTimeout, ep.URL().Redacted(), err)
	}
	return fmt.Errorf("%w: %s: %w", source.ErrNetwork, ep.URL().Redacted(), err)
}
