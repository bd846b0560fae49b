package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/highlights/internal/handler"
)

func newStatusCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show connectivity and circuit state of a running gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := fetchStatus(cmd, addr)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "Base URL of the gateway")

	return cmd
}

func fetchStatus(cmd *cobra.Command, addr string) (*handler.StatusResponse, error) {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, addr+"/api/status", nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned HTTP %d", resp.StatusCode)
	}

	var report handler.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}

	return &report, nil
}
