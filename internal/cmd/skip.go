package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/wavemaker/internal/domain"
	"github.com/felixgeelhaar/wavemaker/internal/errors"
	"github.com/felixgeelhaar/wavemaker/internal/ledger"
	"github.com/felixgeelhaar/wavemaker/internal/tui"
)

var skipCmd = &cobra.Command{
	Use:   "skip <task-id>",
	Short: "Mark a task as explicitly skipped",
	Long: `Skip marks a task as deliberately skipped. Skipped tasks count as done
for run completion but are never dispatched. Skipping is terminal; use
'wavemaker reset' to bring a skipped task back.`,
	Args: cobra.ExactArgs(1),
	RunE: runSkip,
}

var skipYes bool

func init() {
	skipCmd.Flags().BoolVarP(&skipYes, "yes", "y", false, "skip the confirmation prompt")

	rootCmd.AddCommand(skipCmd)
}

func runSkip(cmd *cobra.Command, args []string) error {
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
	if t.Status == domain.StatusSkipped || !t.Status.CanTransitionTo(domain.StatusSkipped) {
		return errors.New(errors.ErrCodeLedgerTransition,
			fmt.Sprintf("task %s is already %s", id, t.Status)).
			WithSuggestion(fmt.Sprintf("Run 'wavemaker reset %s' first to make it schedulable again", id))
	}

	if !skipYes && tui.ShouldPrompt() {
		ok, err := tui.ConfirmSkip(string(id), t.Title)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Skip cancelled.")
			return nil
		}
	}

	_, err = store.Update(func(set *ledger.TaskSet) error {
		t := set.Find(id)
		if t == nil {
			return errors.NewLedgerTaskUnknownError(args[0])
		}
		t.Status = domain.StatusSkipped
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Task %s skipped.\n", id)
	return nil
}
