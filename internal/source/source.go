package source

import (
	"context"
	"errors"

	"github.com/angeloszaimis/highlights/internal/highlight"
)

// Source answers every query shape the accessors need. Match returns
// ErrNotFound when no match has the id.
type Source interface {
	Recommended(ctx context.Context) ([]highlight.Match, error)
	Leagues(ctx context.Context) ([]highlight.League, error)
	Match(ctx context.Context, id string) (highlight.Match, error)
	TeamHighlights(ctx context.Context, teamID string) ([]highlight.Match, error)
	Search(ctx context.Context, query string) ([]highlight.Match, error)
	CompetitionHighlights(ctx context.Context, competitionID string) ([]highlight.Match, error)
}

var (
	ErrNotFound  = errors.New("source: not found")
	ErrForbidden = errors.New("source: access denied")
	ErrTimeout   = errors.New("source: timed out")
	ErrNetwork   = errors.New("source: network failure")
)
