package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lolstats/internal/config"
	"lolstats/internal/logging"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "lolstats",
	Short: "League of Legends match analysis tool",
	Long:  "Queue historical match analyses for the worker and inspect stored averages.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logging.SetLevel(cfg.LogLevel)
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(enqueueCmd)
	rootCmd.AddCommand(reportCmd)
}
