package local

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/angeloszaimis/highlights/internal/highlight"
	"github.com/angeloszaimis/highlights/internal/source"
)

//go:embed data/demo.yaml
var embedded []byte

var ErrEmptyDataset = errors.New("local: dataset has no matches")

type file struct {
	Matches []highlight.Match `yaml:"matches"`
}

// Dataset is an immutable in-memory set of matches, newest first.
type Dataset struct {
	matches []highlight.Match
	byID    map[string]int
}

var _ source.Source = (*Dataset)(nil)

// Embedded returns the dataset compiled into the binary.
func Embedded() (*Dataset, error) {
	return Parse(embedded)
}

// Load reads a dataset from path, or the embedded one when path is empty.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Embedded()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Dataset, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if len(f.Matches) == 0 {
		return nil, ErrEmptyDataset
	}

	matches := make([]highlight.Match, len(f.Matches))
	copy(matches, f.Matches)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Date.After(matches[j].Date)
	})

	byID := make(map[string]int, len(matches))
	for i, m := range matches {
		if m.ID == "" {
			return nil, fmt.Errorf("parse dataset: match %d has no id", i)
		}
		if _, dup := byID[m.ID]; dup {
			return nil, fmt.Errorf("parse dataset: duplicate match id %q", m.ID)
		}
		byID[m.ID] = i
	}

	return &Dataset{matches: matches, byID: byID}, nil
}

func (d *Dataset) Len() int {
	return len(d.matches)
}

func (d *Dataset) Recommended(context.Context) ([]highlight.Match, error) {
	return d.all(), nil
}

func (d *Dataset) Leagues(context.Context) ([]highlight.League, error) {
	return highlight.GroupByCompetition(d.matches), nil
}

func (d *Dataset) Match(_ context.Context, id string) (highlight.Match, error) {
	i, ok := d.byID[id]
	if !ok {
		return highlight.Match{}, fmt.Errorf("match %q: %w", id, source.ErrNotFound)
	}
	return d.matches[i], nil
}

func (d *Dataset) TeamHighlights(_ context.Context, teamID string) ([]highlight.Match, error) {
	return highlight.FilterByTeam(d.matches, teamID), nil
}

func (d *Dataset) Search(_ context.Context, query string) ([]highlight.Match, error) {
	return highlight.Search(d.matches, query), nil
}

func (d *Dataset) CompetitionHighlights(_ context.Context, competitionID string) ([]highlight.Match, error) {
	return highlight.FilterByCompetition(d.matches, competitionID), nil
}

func (d *Dataset) all() []highlight.Match {
	out := make([]highlight.Match, len(d.matches))
	copy(out, d.matches)
	return out
}
