// Fakefeed is a stand-in for the remote highlights feed, used to watch the
// gateway switch between live and demo data.
//
// Usage:
//
//	go run ./scripts/fakefeed -port 8081
//	go run ./scripts/fakefeed -port 8082 -mode forbidden
//
// Modes:
//   - ok: a full feed
//   - empty: a valid feed with no entries
//   - forbidden: 403 on the feed, as with a bad token
//   - slow: a full feed after -delay
//   - down: 503 on both the feed and /health
//   - flaky: alternates between ok and 500
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type video struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Embed string `json:"embed"`
}

type entry struct {
	Title        string  `json:"title"`
	Competition  string  `json:"competition"`
	MatchviewURL string  `json:"matchviewUrl"`
	Thumbnail    string  `json:"thumbnail"`
	Date         string  `json:"date"`
	Videos       []video `json:"videos"`
}

var fixtures = []struct {
	title       string
	competition string
}{
	{"Liverpool - Everton", "ENGLAND: Premier League"},
	{"Atletico Madrid - Sevilla", "SPAIN: La Liga"},
	{"Juventus - Roma", "ITALY: Serie A"},
	{"Bayern Munich - RB Leipzig", "GERMANY: Bundesliga"},
	{"PSG - Marseille", "FRANCE: Ligue 1"},
	{"Ajax - PSV", "NETHERLANDS: Eredivisie"},
}

func feed() map[string]any {
	now := time.Now().UTC()
	entries := make([]entry, 0, len(fixtures))
	for i, f := range fixtures {
		id := uuid.NewString()
		entries = append(entries, entry{
			Title:        f.title,
			Competition:  f.competition,
			MatchviewURL: "https://example.com/embed/matchview/" + id,
			Thumbnail:    "https://example.com/og/m/" + id + ".jpg",
			Date:         now.Add(-time.Duration(i) * 6 * time.Hour).Format(time.RFC3339),
			Videos: []video{{
				ID:    id,
				Title: "Highlights",
				Embed: fmt.Sprintf(`<iframe src="https://example.com/embed/v/%s/"></iframe>`, id),
			}},
		})
	}
	return map[string]any{"response": entries}
}

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	mode := flag.String("mode", "ok", "ok, empty, forbidden, slow, down or flaky")
	delay := flag.Duration("delay", 15*time.Second, "response delay in slow mode")
	flag.Parse()

	var served atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("GET /video-api/v3/", func(w http.ResponseWriter, r *http.Request) {
		n := served.Add(1)
		log.Printf("request: path=%s from=%s mode=%s n=%d", r.URL.Path, r.RemoteAddr, *mode, n)

		switch *mode {
		case "forbidden":
			http.Error(w, `{"error":"invalid token"}`, http.StatusForbidden)
			return
		case "down":
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		case "flaky":
			if n%2 == 0 {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		case "slow":
			select {
			case <-time.After(*delay):
			case <-r.Context().Done():
				return
			}
		}

		body := feed()
		if *mode == "empty" {
			body = map[string]any{"response": []entry{}}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	// health endpoint used by the gateway health checker
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if *mode == "down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("starting fake feed on %s (mode %s)", addr, *mode)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
