package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mendworks/mend/internal/state"
)

var (
	historyLimit int
	historyDir   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past runs for a target directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := historyDir
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			dir = cwd
		}

		db, err := state.OpenProject(dir)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return err
		}

		runs, err := db.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSTARTED\tRESULT\tITER\tHEALING\tISSUES\tFIXES")
		for _, r := range runs {
			result := red(r.FinalState)
			if r.FinalState == "completed" || r.FinalState == "fix_succeeded" {
				result = green(r.FinalState)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
				r.ID, r.StartedAt.Local().Format(time.DateTime), result,
				r.Iterations, r.HealingAttempts, r.IssueCount, r.FixCount)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list")
	historyCmd.Flags().StringVar(&historyDir, "target", "", "Target directory (default: current directory)")
}
