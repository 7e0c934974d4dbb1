package main

import (
	"os"

	"github.com/spf13/cobra"

	"triage/internal/interfaces/cli/consume"
	"triage/internal/interfaces/cli/migrate"
	"triage/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "triage",
		Short: "Triage - multi-unit triage queue consumer",
		Long:  `Triage consumes healthcare unit events, maintains per-unit priority queues and serves wait-time estimates.`,
	}

	rootCmd.AddCommand(
		consume.NewCommand(),
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
