package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/highlights/internal/highlights"
	"github.com/angeloszaimis/highlights/pkg/logger"
)

var fetchShapes = []string{"recommended", "leagues", "match", "team", "search", "competition"}

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "fetch <" + strings.Join(fetchShapes, "|") + "> [arg]",
		Short:     "Run one query through the fallback pipeline and print JSON",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: fetchShapes,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			log := logger.NewWithWriter(os.Stderr, cfg.Logging.Level, false, cfg.Server.Environment)

			a, err := buildApp(cfg, log)
			if err != nil {
				return err
			}

			// Health probing belongs to serve.
			defer a.wait()
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if a.webhook != nil {
				a.webhook.Start(ctx)
			}

			arg := ""
			if len(args) == 2 {
				arg = args[1]
			}

			result, err := runQuery(ctx, a.service, args[0], arg)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func runQuery(ctx context.Context, svc *highlights.Service, shape, arg string) (any, error) {
	needsArg := shape != "recommended" && shape != "leagues"
	if needsArg && arg == "" {
		return nil, fmt.Errorf("%s needs an argument", shape)
	}

	switch shape {
	case "recommended":
		return svc.Recommended(ctx)
	case "leagues":
		return svc.Leagues(ctx)
	case "match":
		return svc.Match(ctx, arg)
	case "team":
		return svc.TeamHighlights(ctx, arg)
	case "search":
		return svc.Search(ctx, arg)
	case "competition":
		return svc.CompetitionHighlights(ctx, arg)
	default:
		return nil, fmt.Errorf("unknown query %q, want one of %s", shape, strings.Join(fetchShapes, ", "))
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
