package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mend",
	Short: "Self-healing code repair pipeline",
	Long: `mend points an analyze, correct, validate pipeline at a directory of
source code and iterates until the code is clean, the retry budget is
exhausted, or a stage fails fatally.

The analyzer combines linter findings with model triage, the corrector
applies model-proposed fixes inside a path sandbox, and the validator
judges each correction by running the target's test suite. Failed
validations feed their logs back into the next correction attempt.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	Execute()
}
