package main

import (
	"github.com/spf13/cobra"

	"github.com/angeloszaimis/highlights/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "highlights",
		Short:        "Football highlights gateway with an offline fallback",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "Path to a config file (default ./config/config.yaml or ./config.yaml)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newFetchCmd())
	root.AddCommand(newStatusCmd())

	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.LoadFile(path)
}
