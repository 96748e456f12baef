package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/wavemaker/internal/report"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current state of every task in the ledger",
	RunE:  runStatus,
}

var statusFormat string

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "text", "output format: text or json")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	set, err := ledgerStore(cfg).Load()
	if err != nil {
		return err
	}

	switch statusFormat {
	case "json":
		return printJSON(set)
	case "text":
		report.WriteStatusTable(cmd.OutOrStdout(), set)
		return nil
	default:
		return fmt.Errorf("invalid format %q: must be text or json", statusFormat)
	}
}
