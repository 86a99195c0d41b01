package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oficina/internal/config"
	"oficina/internal/logger"
)

var version = "1.0.0"

var (
	appConfig *config.Config
	configErr error
)

var rootCmd = &cobra.Command{
	Use:   "oficina",
	Short: "Financial reports for a car repair shop",
	Long: `oficina derives invoice balances, payment validation, monthly income
statements, the activity ledger and client loyalty rankings from the shop's
records.

Records are read from a YAML/JSON snapshot (DATA_FILE or --data) or from
PostgreSQL when DATABASE_URL is set. Nothing is ever written back.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI with the configuration loaded by main. cfgErr is
// reported by commands that need the configuration.
func Execute(cfg *config.Config, cfgErr error) {
	appConfig, configErr = cfg, cfgErr
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", userMessage(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("data", "", "Snapshot file to read (overrides DATA_FILE and DATABASE_URL)")
	rootCmd.PersistentFlags().String("now", "", "Evaluate as of this date (format: YYYY-MM-DD, default: now)")
	rootCmd.PersistentFlags().Bool("json", false, "Print JSON instead of tables")
}
