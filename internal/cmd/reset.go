package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/wavemaker/internal/domain"
	"github.com/felixgeelhaar/wavemaker/internal/errors"
	"github.com/felixgeelhaar/wavemaker/internal/ledger"
	"github.com/felixgeelhaar/wavemaker/internal/tui"
)

var resetCmd = &cobra.Command{
	Use:   "reset <task-id>",
	Short: "Reset a task back to pending",
	Long: `Reset moves a task back to pending so the next run schedules it again.
This is the only permitted status regression and it clears the task's
attempts, commit ref, and error detail. Use it after fixing whatever
blocked the task.`,
	Args: cobra.ExactArgs(1),
	RunE: runReset,
}

var resetYes bool

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")

	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	id := domain.TaskID(args[0])
	store := ledgerStore(cfg)

	set, err := store.Load()
	if err != nil {
		return err
	}
	t := set.Find(id)
	if t == nil {
		return errors.NewLedgerTaskUnknownError(args[0])
	}
	if t.Status == domain.StatusPending {
		fmt.Fprintf(cmd.OutOrStdout(), "Task %s is already pending.\n", id)
		return nil
	}

	if !resetYes && tui.ShouldPrompt() {
		ok, err := tui.ConfirmReset(string(id), t.Status.String())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled.")
			return nil
		}
	}

	_, err = store.Update(func(set *ledger.TaskSet) error {
		t := set.Find(id)
		if t == nil {
			return errors.NewLedgerTaskUnknownError(args[0])
		}
		t.Status = domain.StatusPending
		t.Attempts = 0
		t.CommitRef = ""
		t.ErrorDetail = ""
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Task %s reset to pending.\n", id)
	return nil
}
