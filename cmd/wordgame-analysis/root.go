package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	projectRoot  string
	debugLogging bool
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordgame-analysis",
		Short: "Behavioral analysis for the word-creation study",
		Long: `wordgame-analysis processes captured session events from the
word-creation study and produces per-participant session metrics, audit
artifacts and summary charts.

It detects away-from-task intervals, derives population speed thresholds,
classifies individual words against the study's suspicion rules and
reconciles the verdicts with participant confessions.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&projectRoot, "root", ".", "Project root holding the config directory")
	cmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug output on the console")

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newValidateCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}
