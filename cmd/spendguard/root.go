package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"expert-ai/spendguard/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "spendguard",
	Short: "Spendguard - spend-based circuit breaker for AI workloads",
	Long: `Spendguard tracks per-principal and per-organization API spend in a
sliding window and enforces threshold rules: alert tiers notify
subscribers, suspend tiers deny further requests until an administrator
intervenes.

It is designed to be embedded in a request path, with this CLI covering
configuration validation and offline replay of spend logs.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "spendguard.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configured file, falling back to defaults when
// the file does not exist and the path was not set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) && !cmd.Flags().Changed("config") {
		return config.DefaultConfig(), nil
	}
	return config.LoadWithEnvOverrides(cfgFile)
}

// newLogger builds a slog logger from the logging configuration, with
// --verbose forcing debug level.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
