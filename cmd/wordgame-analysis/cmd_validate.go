package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/svdpmukherjee/wordgame-analysis/internal/snapshot"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <events.json> [confessions.json]",
		Short: "Check snapshot files against the expected shapes",
		Long: `Check exported snapshot files against the analysis input schemas
before running anything. Findings are printed one per line; a non-zero exit
means at least one file had problems.

The events schema is deliberately lenient: missing fields inside a record
are a per-participant data quality condition the run itself reports, not a
reason to reject the file.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: validateCommandE,
	}
}

func validateCommandE(cmd *cobra.Command, args []string) error {
	total := 0

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("can't read events file: %w", err)
	}
	total += printFindings(cmd, args[0], snapshot.ValidateEventsBytes(data))

	if len(args) == 2 {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("can't read confessions file: %w", err)
		}
		total += printFindings(cmd, args[1], snapshot.ValidateConfessionsBytes(data))
	}

	if total > 0 {
		return fmt.Errorf("%d schema finding(s)", total)
	}
	cmd.Println("All files look valid.")
	return nil
}

func printFindings(cmd *cobra.Command, path string, findings []string) int {
	for _, f := range findings {
		cmd.Printf("%s: %s\n", path, f)
	}
	return len(findings)
}
