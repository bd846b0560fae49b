package main

import (
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/highlights/internal/handler"
	"github.com/angeloszaimis/highlights/internal/metrics"
)

func setupRouter(log *slog.Logger, api *handler.API, metricsCollector *metrics.Collector, strategy string) http.Handler {
	mux := http.NewServeMux()

	api.Register(mux)
	mux.HandleFunc("GET /metrics", metricsCollector.Handler(strategy))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return handler.LogRequests(log, mux)
}
