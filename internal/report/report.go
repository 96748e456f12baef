// Package report renders run results for the terminal: a styled summary,
// wave plans, the status table, and the consolidated failure report that
// accompanies a systemic halt.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/felixgeelhaar/wavemaker/internal/domain"
	"github.com/felixgeelhaar/wavemaker/internal/ledger"
	"github.com/felixgeelhaar/wavemaker/internal/orchestrator"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

// statusLabel colors a task status for terminal display.
func statusLabel(s domain.Status) string {
	switch s {
	case domain.StatusCompleted:
		return successStyle.Render(s.String())
	case domain.StatusBlocked:
		return errorStyle.Render(s.String())
	case domain.StatusSkipped:
		return warnStyle.Render(s.String())
	default:
		return s.String()
	}
}

// WriteStatusTable renders the ledger as a task table with per-status counts.
func WriteStatusTable(w io.Writer, set *ledger.TaskSet) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Project: %s", set.Project)))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Last updated: %s", set.LastUpdated.Format("2006-01-02 15:04:05 MST"))))
	fmt.Fprintln(w)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Title", "Status", "Complexity", "Attempts", "Commit"})
	for _, t := range set.Tasks {
		tw.AppendRow(table.Row{t.ID, t.Title, statusLabel(t.Status), t.Complexity, t.Attempts, t.CommitRef})
	}
	tw.Render()

	counts := set.CountByStatus()
	var parts []string
	for _, s := range []domain.Status{domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted, domain.StatusBlocked, domain.StatusSkipped} {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, mutedStyle.Render(strings.Join(parts, ", ")))
}

// WritePlan renders a computed wave partition.
func WritePlan(w io.Writer, preview *orchestrator.PlanPreview) {
	fmt.Fprintln(w, titleStyle.Render("Execution plan"))

	if len(preview.Waves) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Nothing to do: every task is terminal."))
		return
	}

	for _, wv := range preview.Waves {
		fmt.Fprintf(w, "\nWave %d (%d task(s)):\n", wv.Number, len(wv.Tasks))
		for _, t := range wv.Tasks {
			fmt.Fprintf(w, "  %s  %s\n", t.ID, mutedStyle.Render("tier="+t.Tier.String()))
		}
	}

	if preview.NoParallelism {
		fmt.Fprintln(w)
		fmt.Fprintln(w, warnStyle.Render("No parallelism available: every wave has a single task."))
	}
}

// WriteSummary renders the accounting of one finished run.
func WriteSummary(w io.Writer, summary *orchestrator.Summary) {
	if summary.AlreadyDone {
		fmt.Fprintln(w, successStyle.Render("✓ All tasks already completed. Nothing to do."))
		return
	}

	fmt.Fprintln(w, titleStyle.Render("Run summary"))
	fmt.Fprintf(w, "  Waves run: %d\n", summary.WavesRun)
	fmt.Fprintf(w, "  Completed: %s\n", successStyle.Render(fmt.Sprintf("%d", summary.Completed)))
	if summary.Blocked > 0 {
		fmt.Fprintf(w, "  Blocked:   %s\n", errorStyle.Render(fmt.Sprintf("%d", summary.Blocked)))
	}
	if summary.NoParallelism {
		fmt.Fprintln(w, warnStyle.Render("  Task set degenerated to fully sequential execution."))
	}
	if summary.ArchivePath != "" {
		fmt.Fprintf(w, "  Archived:  %s\n", summary.ArchivePath)
	}
}

// WriteBlockedReport renders the consolidated failure report: every blocked
// task with its accumulated error detail. Printed before a systemic halt
// exits and after any run that ends with blocked tasks.
func WriteBlockedReport(w io.Writer, set *ledger.TaskSet) {
	var blocked []ledger.Task
	for _, t := range set.Tasks {
		if t.Status == domain.StatusBlocked {
			blocked = append(blocked, t)
		}
	}
	if len(blocked) == 0 {
		return
	}

	fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("Blocked tasks (%d)", len(blocked))))
	for _, t := range blocked {
		fmt.Fprintf(w, "\n  %s  %s\n", errorStyle.Render(string(t.ID)), t.Title)
		fmt.Fprintf(w, "    attempts: %d\n", t.Attempts)
		if t.ErrorDetail != "" {
			for _, line := range strings.Split(t.ErrorDetail, "\n") {
				fmt.Fprintf(w, "    %s\n", mutedStyle.Render(line))
			}
		}
	}
}
