package main

import (
	"fmt"
	"os"

	"alcyxob/liftlog/internal/config"
	"alcyxob/liftlog/internal/logging"

	"github.com/spf13/cobra"
)

var (
	configDir string
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "liftlog",
	Short: "Personal strength-training log",
	Long: `liftlog records workouts, the exercises performed in them and the sets
of each exercise, and serves them over a JSON API.

Configuration is read from config.yaml in --config and from the environment
(DATABASE_DRIVER, DATABASE_DSN, JWT_SECRET, REDIS_ADDR, S3_BUCKET_NAME, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logging.InitLogger(cfg.Log.Level)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing config.yaml")
	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}
