package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/highlights/internal/httpserver"
	"github.com/angeloszaimis/highlights/pkg/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := buildApp(cfg, log)
			if err != nil {
				log.Error("Failed to build gateway", slog.Any("err", err))
				return err
			}

			router := a.router()
			srv, err := httpserver.New(cfg.Server.Address, router,
				httpserver.WithLogger(log),
				httpserver.OnShutdown(a.api.Close))
			if err != nil {
				log.Error("Failed to create server", slog.Any("err", err))
				return err
			}

			workers, stopWorkers := context.WithCancel(context.Background())
			a.start(workers)

			log.Info("Highlights gateway started",
				slog.String("addr", srv.Addr()),
				slog.String("strategy", cfg.Remote.Strategy),
				slog.Int("endpoints", len(a.pool.Endpoints())))

			err = srv.Run(ctx)

			log.Info("Shutting down gracefully...")
			stopWorkers()
			a.wait()
			a.bus.Close()

			if err != nil {
				log.Error("Server stopped with error", slog.Any("err", err))
			}
			return err
		},
	}
}
