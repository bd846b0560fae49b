package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/angeloszaimis/highlights/internal/endpoint"
	"github.com/angeloszaimis/highlights/internal/highlight"
	"github.com/angeloszaimis/highlights/internal/highlights"
	"github.com/angeloszaimis/highlights/internal/source"
	"github.com/angeloszaimis/highlights/internal/status"
)

// Service is what the API needs from highlights.Service.
type Service interface {
	Recommended(ctx context.Context) ([]highlight.Match, error)
	Leagues(ctx context.Context) ([]highlight.League, error)
	Match(ctx context.Context, id string) (highlight.Match, error)
	TeamHighlights(ctx context.Context, teamID string) ([]highlight.Match, error)
	Search(ctx context.Context, query string) ([]highlight.Match, error)
	CompetitionHighlights(ctx context.Context, competitionID string) ([]highlight.Match, error)
	ForceRetry()
	ResetCooldown()
	Report() highlights.Report
}

// Subscriber is the read side of the status bus.
type Subscriber interface {
	Subscribe(status.Handler) (string, error)
	Unsubscribe(id string) error
}

type EndpointLister interface {
	Statuses() []endpoint.Status
}

type API struct {
	logger    *slog.Logger
	service   Service
	events    Subscriber
	endpoints EndpointLister

	done      chan struct{}
	closeOnce sync.Once
}

type StatusResponse struct {
	highlights.Report
	Endpoints []endpoint.Status `json:"endpoints"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewAPI(logger *slog.Logger, service Service, events Subscriber, endpoints EndpointLister) *API {
	return &API{
		logger:    logger,
		service:   service,
		events:    events,
		endpoints: endpoints,
		done:      make(chan struct{}),
	}
}

// Close ends every open event stream. Register it with the server's
// shutdown so streaming clients do not hold Shutdown up.
func (a *API) Close() {
	a.closeOnce.Do(func() {
		close(a.done)
	})
}

// Register adds every API route to mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/highlights/recommended", a.recommended)
	mux.HandleFunc("GET /api/leagues", a.leagues)
	mux.HandleFunc("GET /api/matches/{id}", a.match)
	mux.HandleFunc("GET /api/teams/{id}/highlights", a.team)
	mux.HandleFunc("GET /api/search", a.search)
	mux.HandleFunc("GET /api/competitions/{id}/highlights", a.competition)
	mux.HandleFunc("POST /api/retry", a.retry)
	mux.HandleFunc("POST /api/cooldown/reset", a.resetCooldown)
	mux.HandleFunc("GET /api/status", a.status)
	mux.HandleFunc("GET /api/events", a.stream)
}

func (a *API) recommended(w http.ResponseWriter, r *http.Request) {
	matches, err := a.service.Recommended(r.Context())
	a.respond(w, r, matches, err)
}

func (a *API) leagues(w http.ResponseWriter, r *http.Request) {
	leagues, err := a.service.Leagues(r.Context())
	a.respond(w, r, leagues, err)
}

func (a *API) match(w http.ResponseWriter, r *http.Request) {
	m, err := a.service.Match(r.Context(), r.PathValue("id"))
	a.respond(w, r, m, err)
}

func (a *API) team(w http.ResponseWriter, r *http.Request) {
	matches, err := a.service.TeamHighlights(r.Context(), r.PathValue("id"))
	a.respond(w, r, matches, err)
}

func (a *API) search(w http.ResponseWriter, r *http.Request) {
	matches, err := a.service.Search(r.Context(), r.URL.Query().Get("q"))
	a.respond(w, r, matches, err)
}

func (a *API) competition(w http.ResponseWriter, r *http.Request) {
	matches, err := a.service.CompetitionHighlights(r.Context(), r.PathValue("id"))
	a.respond(w, r, matches, err)
}

func (a *API) retry(w http.ResponseWriter, r *http.Request) {
	a.service.ForceRetry()
	writeJSON(w, http.StatusAccepted, a.statusResponse())
}

func (a *API) resetCooldown(w http.ResponseWriter, r *http.Request) {
	a.service.ResetCooldown()
	writeJSON(w, http.StatusAccepted, a.statusResponse())
}

func (a *API) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.statusResponse())
}

func (a *API) statusResponse() StatusResponse {
	resp := StatusResponse{
		Report:    a.service.Report(),
		Endpoints: []endpoint.Status{},
	}
	if a.endpoints != nil {
		resp.Endpoints = a.endpoints.Statuses()
	}
	return resp
}

func (a *API) respond(w http.ResponseWriter, r *http.Request, body any, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, body)
	case errors.Is(err, source.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, context.Canceled):
		// Client went away.
	default:
		a.logger.Error("Request failed",
			slog.String("path", r.URL.Path),
			slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
