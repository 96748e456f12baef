package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/wavemaker/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Seed .wavemaker/ with an example ledger and configuration",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

const exampleLedger = `version: "1"
project: my-project
tasks:
  - id: "1.0"
    title: Describe the first unit of work
    complexity: 2
    status: pending
    verify_command: go test ./...
    files:
      - path: internal/example/example.go
        action: create
  - id: "2.0"
    title: Describe the second unit of work
    complexity: 3
    status: pending
    verify_command: go test ./...
    files:
      - path: internal/other/other.go
        action: modify
`

const exampleConfig = `# wavemaker configuration. Every key is optional.
#
# conflict:
#   mode: permissive      # or conservative
# run:
#   max_blocked: 3
# worker:
#   command: ["wavemaker-worker"]
#   timeout: 15m
#   tiers:
#     "1.0": elevated
# log:
#   level: info
#   format: text
`

func runInit(cmd *cobra.Command, args []string) error {
	stateDir := filepath.Join(flagWorkspace, config.StateDir)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", stateDir, err)
	}

	wrote := false
	for _, f := range []struct {
		name    string
		content string
	}{
		{"tasks.yaml", exampleLedger},
		{"config.yaml", exampleConfig},
	} {
		path := filepath.Join(stateDir, f.name)
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, leaving it alone.\n", path)
			continue
		}
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		wrote = true
	}

	if wrote {
		fmt.Fprintln(cmd.OutOrStdout(), "\nEdit .wavemaker/tasks.yaml, then run 'wavemaker plan' to preview the waves.")
	}
	return nil
}
