package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/wavemaker/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "wavemaker",
	Short: "Task-graph scheduler and resumable execution engine",
	Long: `wavemaker partitions a set of file-scoped tasks into conflict-free waves,
dispatches one external worker per task, verifies every success claim, and
merges results back into a durable task ledger. Interrupted runs resume by
running the same command again.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagWorkspace string
	flagLogLevel  string
	flagLogFormat string
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a cancellable context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagWorkspace, "workspace", "C", ".", "project directory holding .wavemaker/")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format (text, json)")
}

// setupLogger configures the process-wide logger from config plus flag
// overrides.
func setupLogger(level, format string) *log.Logger {
	cfg := log.DefaultConfig()
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	if flagLogFormat != "" {
		format = flagLogFormat
	}
	if level != "" {
		cfg.Level = log.ParseLevel(level)
	}
	if format != "" {
		cfg.Format = log.ParseFormat(format)
	}

	logger := log.New(cfg)
	log.SetDefaultLogger(logger)
	return logger
}
