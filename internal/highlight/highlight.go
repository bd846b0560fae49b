package highlight

import (
	"sort"
	"strings"
	"time"
)

type Team struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Logo string `json:"logo,omitempty" yaml:"logo,omitempty"`
}

type Score struct {
	Home int `json:"home" yaml:"home"`
	Away int `json:"away" yaml:"away"`
}

type Competition struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Logo string `json:"logo,omitempty" yaml:"logo,omitempty"`
}

// Match is a single highlight video for one fixture.
type Match struct {
	ID           string      `json:"id" yaml:"id"`
	Title        string      `json:"title" yaml:"title"`
	Date         time.Time   `json:"date" yaml:"date"`
	ThumbnailURL string      `json:"thumbnailUrl" yaml:"thumbnail_url"`
	VideoURL     string      `json:"videoUrl" yaml:"video_url"`
	Duration     string      `json:"duration,omitempty" yaml:"duration,omitempty"`
	Views        int         `json:"views,omitempty" yaml:"views,omitempty"`
	HomeTeam     Team        `json:"homeTeam" yaml:"home_team"`
	AwayTeam     Team        `json:"awayTeam" yaml:"away_team"`
	Score        Score       `json:"score" yaml:"score"`
	Competition  Competition `json:"competition" yaml:"competition"`
}

// League groups the highlights of one competition.
type League struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Logo       string  `json:"logo,omitempty" yaml:"logo,omitempty"`
	Highlights []Match `json:"highlights" yaml:"highlights"`
}

// InvolvesTeam reports whether teamID plays in the match, either side.
func (m Match) InvolvesTeam(teamID string) bool {
	return m.HomeTeam.ID == teamID || m.AwayTeam.ID == teamID
}

// Matches reports whether the query appears in the title, either team name or
// the competition name. Matching is case-insensitive; an empty query matches nothing.
func (m Match) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}

	for _, field := range []string{m.Title, m.HomeTeam.Name, m.AwayTeam.Name, m.Competition.Name} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func FilterByTeam(matches []Match, teamID string) []Match {
	out := make([]Match, 0)
	for _, m := range matches {
		if m.InvolvesTeam(teamID) {
			out = append(out, m)
		}
	}
	return out
}

func FilterByCompetition(matches []Match, competitionID string) []Match {
	out := make([]Match, 0)
	for _, m := range matches {
		if m.Competition.ID == competitionID {
			out = append(out, m)
		}
	}
	return out
}

func Search(matches []Match, query string) []Match {
	out := make([]Match, 0)
	for _, m := range matches {
		if m.Matches(query) {
			out = append(out, m)
		}
	}
	return out
}

// GroupByCompetition builds one League per competition, keeping the feed order
// of first appearance.
func GroupByCompetition(matches []Match) []League {
	index := make(map[string]int)
	leagues := make([]League, 0)

	for _, m := range matches {
		i, ok := index[m.Competition.ID]
		if !ok {
			i = len(leagues)
			index[m.Competition.ID] = i
			leagues = append(leagues, League{
				ID:   m.Competition.ID,
				Name: m.Competition.Name,
				Logo: m.Competition.Logo,
			})
		}
		leagues[i].Highlights = append(leagues[i].Highlights, m)
	}

	return leagues
}

// SortLeaguesBySize orders leagues by number of highlights, most first.
// Ties keep their original order.
func SortLeaguesBySize(leagues []League) []League {
	sorted := make([]League, len(leagues))
	copy(sorted, leagues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Highlights) > len(sorted[j].Highlights)
	})
	return sorted
}

// Slug turns a display name into a lowercase dash separated identifier.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
