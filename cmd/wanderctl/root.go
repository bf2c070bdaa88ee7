package main

import (
	"fmt"

	"wanderlust-service/internal/infrastructure/config"
	"wanderlust-service/pkg/logger"

	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

// env carries what every subcommand needs once bootstrap has run
type env struct {
	cfg *config.Config
	log logger.Logger
}

// getRootCmd builds the command tree. Each call returns a fresh tree so
// tests can execute it repeatedly.
func getRootCmd() *cobra.Command {
	e := &env{}
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s", Version),
		Use:     "wanderctl",
		Short:   "Maintenance tasks for the wanderlust flight service",
		Long: `wanderctl manages the wanderlust flight route database.

It migrates the PostgreSQL schema, imports countries, cities, airports,
airlines and routes from the configured providers, and checks the Amadeus
client credentials. Configuration is read from the environment and an
optional .env file, the same way the server reads it.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.bootstrap(cmd)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.Flags().BoolP("version", "V", false, "version for wanderctl")
	rootCmd.PersistentFlags().String("log-level", "", "override LOG_LEVEL")

	rootCmd.AddCommand(getMigrateCmd(e), getImportCmd(e), getTokenCmd(e))
	return rootCmd
}

func (e *env) bootstrap(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	e.cfg = cfg
	e.log = logger.NewLogger(cfg.LogLevel)
	return nil
}
