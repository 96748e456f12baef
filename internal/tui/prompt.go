// Package tui holds the small interactive surfaces of wavemaker: the
// confirmation prompts guarding operator reset and skip.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// ConfirmReset asks the operator to confirm resetting a task back to pending.
// Reset is the only permitted status regression, so it is never silent.
func ConfirmReset(taskID, currentStatus string) (bool, error) {
	return confirm(fmt.Sprintf("Reset task %s (currently %s) back to pending?", taskID, currentStatus))
}

// ConfirmSkip asks the operator to confirm skipping a task.
func ConfirmSkip(taskID, title string) (bool, error) {
	return confirm(fmt.Sprintf("Skip task %s (%q)? It will not be scheduled again.", taskID, title))
}

func confirm(message string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(message).
			Value(&confirmed),
	))

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown based on environment.
// Prompts are disabled in CI environments or when stdin is not a terminal.
func ShouldPrompt() bool {
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}

	return IsInteractive()
}
