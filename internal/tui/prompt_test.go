package tui

import (
	"testing"
)

func TestShouldPromptInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if ShouldPrompt() {
		t.Error("prompts must be disabled when CI is set")
	}
}

func TestShouldPromptGitHubActions(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")
	if ShouldPrompt() {
		t.Error("prompts must be disabled in GitHub Actions")
	}
}
