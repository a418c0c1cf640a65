// Package report summarizes a finished run for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/mendworks/mend/internal/pipeline"
	"github.com/mendworks/mend/pkg/models"
)

// Report is the serializable execution summary of one run.
type Report struct {
	RunID           string        `json:"run_id" yaml:"run_id"`
	TargetDir       string        `json:"target_dir" yaml:"target_dir"`
	FinalState      models.State  `json:"final_state" yaml:"final_state"`
	StopSucceeded   bool          `json:"succeeded" yaml:"succeeded"`
	Iterations      int           `json:"iterations" yaml:"iterations"`
	MaxIterations   int           `json:"max_iterations" yaml:"max_iterations"`
	HealingAttempts int           `json:"healing_attempts" yaml:"healing_attempts"`
	Duration        time.Duration `json:"duration" yaml:"duration"`

	Issues      []models.Issue            `json:"issues,omitempty" yaml:"issues,omitempty"`
	Fixes       []models.FixRecord        `json:"fixes,omitempty" yaml:"fixes,omitempty"`
	Validations []models.ValidationRecord `json:"validations,omitempty" yaml:"validations,omitempty"`
	Errors      []string                  `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// FromContext builds a report from a finished baton.
func FromContext(pc *pipeline.Context) *Report {
	return &Report{
		RunID:           pc.RunID,
		TargetDir:       pc.TargetDir,
		FinalState:      pc.State,
		StopSucceeded:   pc.State == models.StateCompleted || pc.State == models.StateFixSucceeded,
		Iterations:      pc.Iteration,
		MaxIterations:   pc.MaxIterations,
		HealingAttempts: pc.HealingAttempts,
		Duration:        pc.EndedAt.Sub(pc.StartedAt),
		Issues:          pc.Issues,
		Fixes:           pc.AppliedFixes,
		Validations:     pc.Validations,
		Errors:          pc.ErrorLog,
	}
}

// WriteFile serializes the report to path, choosing YAML for .yaml/.yml
// extensions and JSON otherwise.
func (r *Report) WriteFile(path string) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(r)
	default:
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("report: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: writing %s: %w", path, err)
	}
	return nil
}

// Render prints a colored human-readable summary.
func (r *Report) Render(w io.Writer) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	verdict := red(string(r.FinalState))
	if r.StopSucceeded {
		verdict = green(string(r.FinalState))
	}

	fmt.Fprintf(w, "%s %s\n", bold("run"), r.RunID)
	fmt.Fprintf(w, "  target:     %s\n", r.TargetDir)
	fmt.Fprintf(w, "  result:     %s\n", verdict)
	fmt.Fprintf(w, "  iterations: %d/%d", r.Iterations, r.MaxIterations)
	if r.HealingAttempts > 0 {
		fmt.Fprintf(w, " (%s)", yellow(fmt.Sprintf("%d healing retries", r.HealingAttempts)))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  issues:     %d\n", len(r.Issues))
	fmt.Fprintf(w, "  fixes:      %d\n", len(r.Fixes))
	fmt.Fprintf(w, "  duration:   %s\n", r.Duration.Round(time.Millisecond))

	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s %s\n", red("error:"), e)
	}
}
