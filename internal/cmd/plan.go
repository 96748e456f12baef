package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/wavemaker/internal/report"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview the wave partition without executing anything",
	Long: `Plan computes the conflict-free wave partition of every incomplete task
and prints it with the tier each task would run at. Nothing is invoked and
nothing is written. Only the first wave is guaranteed to execute as shown;
later waves are recomputed after each merge.`,
	RunE: runPlan,
}

var planJSON bool

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print the plan as JSON")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	preview, err := buildOrchestrator(cfg, logger).Plan()
	if err != nil {
		return err
	}

	if planJSON {
		return printJSON(preview)
	}
	report.WritePlan(cmd.OutOrStdout(), preview)
	return nil
}
