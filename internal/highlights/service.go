package highlights

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/angeloszaimis/highlights/internal/circuitbreaker"
	"github.com/angeloszaimis/highlights/internal/fallback"
	"github.com/angeloszaimis/highlights/internal/highlight"
	"github.com/angeloszaimis/highlights/internal/source"
	"github.com/angeloszaimis/highlights/internal/status"
)

// Thresholds are the minimum list lengths accepted from the live feed.
type Thresholds struct {
	Recommended int
	Leagues     int
	Default     int
}

func DefaultThresholds() Thresholds {
	return Thresholds{Recommended: 3, Leagues: 2, Default: 1}
}

type Mode string

const (
	ModeUnknown Mode = "unknown"
	ModeLive    Mode = "live"
	ModeDemo    Mode = "demo"
)

// Circuit is the part of the circuit tracker the service drives directly.
type Circuit interface {
	ForceReset()
	Snapshot() circuitbreaker.Snapshot
}

type Service struct {
	logger     *slog.Logger
	orch       *fallback.Orchestrator
	circuit    Circuit
	remote     source.Source
	local      source.Source
	thresholds Thresholds

	mu        sync.RWMutex
	mode      Mode
	lastError string
}

type Report struct {
	Mode      Mode                    `json:"mode"`
	LastError string                  `json:"lastError,omitempty"`
	Circuit   circuitbreaker.Snapshot `json:"circuit"`
}

// New wires the service and subscribes it to bus so it can tell whether the
// data it serves is live or demo.
func New(logger *slog.Logger, orch *fallback.Orchestrator, circuit Circuit, bus *status.Bus, remote, local source.Source, thresholds Thresholds) (*Service, error) {
	s := &Service{
		logger:     logger,
		orch:       orch,
		circuit:    circuit,
		remote:     remote,
		local:      local,
		thresholds: thresholds,
		mode:       ModeUnknown,
	}

	if _, err := bus.Subscribe(s.observe); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) Recommended(ctx context.Context) ([]highlight.Match, error) {
	return fetchSequence(ctx, s, "recommended", s.thresholds.Recommended, true,
		s.remote.Recommended, s.local.Recommended)
}

// Leagues returns every league, most highlights first.
func (s *Service) Leagues(ctx context.Context) ([]highlight.League, error) {
	leagues, err := fetchSequence(ctx, s, "leagues", s.thresholds.Leagues, true,
		s.remote.Leagues, s.local.Leagues)
	if err != nil {
		return nil, err
	}
	return highlight.SortLeaguesBySize(leagues), nil
}

// Match looks id up in the live feed, then in the demo data. It returns
// source.ErrNotFound when neither has it.
func (s *Service) Match(ctx context.Context, id string) (highlight.Match, error) {
	res, err := fallback.Fetch(ctx, s.orch, fallback.Request[highlight.Match]{
		Name: "match",
		Remote: func(ctx context.Context) (fallback.Result[highlight.Match], error) {
			m, err := s.remote.Match(ctx, id)
			if errors.Is(err, source.ErrNotFound) {
				return fallback.Empty[highlight.Match](), nil
			}
			if err != nil {
				return fallback.Result[highlight.Match]{}, err
			}
			return fallback.Entity(m), nil
		},
		Local: func(ctx context.Context) (fallback.Result[highlight.Match], error) {
			m, err := s.local.Match(ctx, id)
			if err != nil {
				return fallback.Result[highlight.Match]{}, err
			}
			return fallback.Entity(m), nil
		},
		Threshold: s.thresholds.Default,
		Lookup:    true,
	})
	if err != nil {
		return highlight.Match{}, err
	}

	m, _ := res.Entity()
	return m, nil
}

func (s *Service) TeamHighlights(ctx context.Context, teamID string) ([]highlight.Match, error) {
	return fetchSequence(ctx, s, "team", s.thresholds.Default, true,
		func(ctx context.Context) ([]highlight.Match, error) { return s.remote.TeamHighlights(ctx, teamID) },
		func(ctx context.Context) ([]highlight.Match, error) { return s.local.TeamHighlights(ctx, teamID) })
}

// Search never touches either source for a blank query.
func (s *Service) Search(ctx context.Context, query string) ([]highlight.Match, error) {
	if strings.TrimSpace(query) == "" {
		return []highlight.Match{}, nil
	}

	return fetchSequence(ctx, s, "search", s.thresholds.Default, false,
		func(ctx context.Context) ([]highlight.Match, error) { return s.remote.Search(ctx, query) },
		func(ctx context.Context) ([]highlight.Match, error) { return s.local.Search(ctx, query) })
}

func (s *Service) CompetitionHighlights(ctx context.Context, competitionID string) ([]highlight.Match, error) {
	return fetchSequence(ctx, s, "competition", s.thresholds.Default, true,
		func(ctx context.Context) ([]highlight.Match, error) {
			return s.remote.CompetitionHighlights(ctx, competitionID)
		},
		func(ctx context.Context) ([]highlight.Match, error) {
			return s.local.CompetitionHighlights(ctx, competitionID)
		})
}

// ForceRetry is the user asking to try the live feed again right now.
func (s *Service) ForceRetry() {
	s.logger.Info("Live feed retry requested")
	s.circuit.ForceReset()
}

// ResetCooldown has the same effect as ForceRetry. The health checker calls
// it when a feed mirror comes back.
func (s *Service) ResetCooldown() {
	s.logger.Info("Live feed cooldown reset")
	s.circuit.ForceReset()
}

func (s *Service) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *Service) Report() Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Report{
		Mode:      s.mode,
		LastError: s.lastError,
		Circuit:   s.circuit.Snapshot(),
	}
}

func (s *Service) observe(e status.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Kind {
	case status.KindConnected:
		s.mode = ModeLive
		s.lastError = ""
	case status.KindError:
		s.mode = ModeDemo
		s.lastError = e.ErrorMessage
	}
}

func fetchSequence[T any](ctx context.Context, s *Service, name string, threshold int, notify bool, remote, local func(context.Context) ([]T, error)) ([]T, error) {
	res, err := fallback.Fetch(ctx, s.orch, fallback.Request[T]{
		Name:      name,
		Remote:    asSequence(remote),
		Local:     asSequence(local),
		Threshold: threshold,
		Notify:    notify,
	})
	if err != nil {
		return nil, err
	}

	items := res.Items()
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func asSequence[T any](fn func(context.Context) ([]T, error)) fallback.Call[T] {
	return func(ctx context.Context) (fallback.Result[T], error) {
		items, err := fn(ctx)
		if err != nil {
			return fallback.Result[T]{}, err
		}
		return fallback.Sequence(items), nil
	}
}
