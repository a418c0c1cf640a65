// Package stages provides the three pipeline capabilities: the analyzer,
// the corrector, and the validator.
package stages

import (
	"context"
	"fmt"
	"log"

	"github.com/mendworks/mend/internal/analyze"
	"github.com/mendworks/mend/internal/oracle"
	"github.com/mendworks/mend/internal/pipeline"
	"github.com/mendworks/mend/internal/sandbox"
	"github.com/mendworks/mend/pkg/models"
)

// Analyzer inspects the target with the linter, lets the oracle triage the
// findings, and records the confirmed issues on the baton.
type Analyzer struct {
	Linter  *analyze.Runner
	Oracle  oracle.Oracle
	Sandbox *sandbox.Sandbox
	Verbose bool
}

// Name returns the analyzer role.
func (a *Analyzer) Name() models.Stage { return models.StageAnalyzer }

// Execute runs the analysis pass. It exits IssuesDetected when defects are
// found and Completed when the target is clean.
func (a *Analyzer) Execute(ctx context.Context, pc *pipeline.Context) (*pipeline.Context, error) {
	findings, err := a.Linter.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	issues := findings
	if a.Oracle != nil {
		files, err := readSources(a.Sandbox)
		if err != nil {
			return nil, err
		}
		triaged, err := a.Oracle.ProposeIssues(ctx, oracle.AnalysisRequest{
			Files:    files,
			Findings: findings,
		})
		if err != nil {
			return nil, fmt.Errorf("triaging findings: %w", err)
		}
		issues = analyze.Dedupe(triaged)
	}

	if a.Verbose {
		log.Printf("[analyzer] run %s: %d findings, %d confirmed issues",
			pc.RunID, len(findings), len(issues))
	}

	pc.Issues = issues
	if len(issues) == 0 {
		pc.State = models.StateCompleted
	} else {
		pc.State = models.StateIssuesDetected
	}
	return pc, nil
}

// readSources loads every source file in the sandbox for the oracle.
func readSources(sb *sandbox.Sandbox) ([]oracle.SourceFile, error) {
	paths, err := sb.SourceFiles(".py")
	if err != nil {
		return nil, err
	}
	files := make([]oracle.SourceFile, 0, len(paths))
	for _, p := range paths {
		data, err := sb.ReadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, oracle.SourceFile{Path: p, Content: string(data)})
	}
	return files, nil
}

var _ pipeline.Stage = (*Analyzer)(nil)
