package cmd

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/wavemaker/internal/errors"
	"github.com/felixgeelhaar/wavemaker/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute all incomplete tasks wave by wave",
	Long: `Run partitions the incomplete tasks into conflict-free waves and executes
them sequentially, one concurrent worker per task inside a wave. Every
success claim is verified; failed tasks get exactly one escalated retry
before being blocked. Re-running after an interruption resumes from the
persisted ledger; re-running after full success is a no-op.`,
	RunE: runRun,
}

var (
	runDryRun       bool
	runJSON         bool
	runMaxBlocked   int
	runConflictMode string
	runWorker       string
	runTimeout      time.Duration
)

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "compute and print the wave plan without invoking workers")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the run summary as JSON")
	runCmd.Flags().IntVar(&runMaxBlocked, "max-blocked", 0, "halt the run when more than this many tasks become blocked (overrides config)")
	runCmd.Flags().StringVar(&runConflictMode, "conflict-mode", "", "conflict analysis mode: permissive or conservative (overrides config)")
	runCmd.Flags().StringVar(&runWorker, "worker", "", "worker command (overrides config)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "per-worker timeout (overrides config)")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	if runMaxBlocked > 0 {
		cfg.Run.MaxBlocked = runMaxBlocked
	}
	if runConflictMode != "" {
		cfg.Conflict.Mode = runConflictMode
	}
	if runWorker != "" {
		cfg.Worker.Command = strings.Fields(runWorker)
	}
	if runTimeout > 0 {
		cfg.Worker.Timeout = runTimeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	orch := buildOrchestrator(cfg, logger)

	if runDryRun {
		preview, err := orch.Plan()
		if err != nil {
			return err
		}
		if runJSON {
			return printJSON(preview)
		}
		report.WritePlan(cmd.OutOrStdout(), preview)
		return nil
	}

	summary, runErr := orch.Run(cmd.Context())

	if summary != nil {
		if runJSON {
			if err := printJSON(summary); err != nil {
				return err
			}
		} else {
			report.WriteSummary(cmd.OutOrStdout(), summary)
		}
	}

	if runErr != nil {
		// The consolidated report accompanies every run that left tasks
		// blocked, halt or not.
		var werr *errors.WavemakerError
		if stderrors.As(runErr, &werr) &&
			(werr.Code == errors.ErrCodeRunTaskBlocked || werr.Code == errors.ErrCodeRunSystemicHalt) {
			if set, loadErr := ledgerStore(cfg).Load(); loadErr == nil && !runJSON {
				fmt.Fprintln(cmd.OutOrStdout())
				report.WriteBlockedReport(cmd.OutOrStdout(), set)
			}
		}
		return runErr
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
