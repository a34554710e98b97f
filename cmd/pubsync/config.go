package main

import (
	"github.com/spf13/cobra"

	"github.com/pubsync/pubsync/internal/logging"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration as JSON after merging the config file with
environment overrides. The platform password is never printed.`,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	log := logging.New(verbose)
	return outputJSON(loadConfig(log))
}
