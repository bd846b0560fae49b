package remote

import (
	"strings"
	"time"

	"github.com/angeloszaimis/highlights/internal/highlight"
)

// feedResponse is the body of GET /video-api/v3/.
type feedResponse struct {
	Response []feedEntry `json:"response"`
}

type feedEntry struct {
	Title        string      `json:"title"`
	Competition  string      `json:"competition"`
	MatchviewURL string      `json:"matchviewUrl"`
	Thumbnail    string      `json:"thumbnail"`
	Date         string      `json:"date"`
	Videos       []feedVideo `json:"videos"`
}

type feedVideo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Embed string `json:"embed"`
}

var feedDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
}

func parseFeedDate(raw string) time.Time {
	for _, layout := range feedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (e feedEntry) toMatch() highlight.Match {
	home, away, _ := strings.Cut(e.Title, " - ")
	home = strings.TrimSpace(home)
	away = strings.TrimSpace(away)

	date := parseFeedDate(e.Date)

	id := highlight.Slug(e.Title + " " + date.Format("2006-01-02"))
	if len(e.Videos) > 0 && e.Videos[0].ID != "" {
		id = e.Videos[0].ID
	}

	return highlight.Match{
		ID:           id,
		Title:        e.Title,
		Date:         date,
		ThumbnailURL: e.Thumbnail,
		VideoURL:     e.MatchviewURL,
		HomeTeam:     highlight.Team{ID: highlight.Slug(home), Name: home},
		AwayTeam:     highlight.Team{ID: highlight.Slug(away), Name: away},
		Competition: highlight.Competition{
			ID:   highlight.Slug(e.Competition),
			Name: e.Competition,
		},
	}
}

func toMatches(entries []feedEntry) []highlight.Match {
	out := make([]highlight.Match, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Title) == "" {
			continue
		}
		out = append(out, e.toMatch())
	}
	return out
}
