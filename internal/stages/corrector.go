package stages

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mendworks/mend/internal/oracle"
	"github.com/mendworks/mend/internal/pipeline"
	"github.com/mendworks/mend/internal/sandbox"
	"github.com/mendworks/mend/pkg/models"
)

// Corrector asks the oracle for fixes and applies them through the
// sandbox. On a healing retry it consumes the failure logs left by the
// validator and clears them.
type Corrector struct {
	Oracle  oracle.Oracle
	Sandbox *sandbox.Sandbox
	// DryWrite skips writing files, for rehearsal runs.
	DryWrite bool
	Verbose  bool
}

// Name returns the corrector role.
func (c *Corrector) Name() models.Stage { return models.StageCorrector }

// Execute runs one correction pass. It exits Validating when at least one
// file changed, FixSucceeded when the oracle proposed nothing, and
// FixFailed when every proposed change was unusable.
func (c *Corrector) Execute(ctx context.Context, pc *pipeline.Context) (*pipeline.Context, error) {
	files, err := readSources(c.Sandbox)
	if err != nil {
		return nil, err
	}

	healing := len(pc.TestFailureLogs) > 0
	req := oracle.CorrectionRequest{
		Files:       files,
		Issues:      pc.Issues,
		FailureLogs: pc.TestFailureLogs,
		FailedTests: pc.LastFailedTests,
	}
	// Consume the self-healing channel regardless of the outcome below.
	pc.TestFailureLogs = nil

	changes, err := c.Oracle.ProposeFixes(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("proposing fixes: %w", err)
	}

	if len(changes) == 0 {
		if c.Verbose {
			log.Printf("[corrector] run %s: no changes proposed", pc.RunID)
		}
		pc.State = models.StateFixSucceeded
		return pc, nil
	}

	applied := 0
	for _, ch := range changes {
		if err := c.apply(ch); err != nil {
			// A bad path from the oracle is contained, not fatal.
			if errors.Is(err, sandbox.ErrOutsideSandbox) {
				pc.ErrorLog = append(pc.ErrorLog, fmt.Sprintf("corrector: rejected change: %v", err))
				continue
			}
			return nil, err
		}
		applied++
		pc.AppliedFixes = append(pc.AppliedFixes, models.FixRecord{
			File:       ch.Path,
			Summary:    ch.Summary,
			IssueKinds: kindsFor(pc.Issues, ch.Path),
			Iteration:  pc.Iteration,
			Healing:    healing,
			AppliedAt:  time.Now(),
		})
	}
	if c.Verbose {
		log.Printf("[corrector] run %s: applied %d of %d changes (healing=%v)",
			pc.RunID, applied, len(changes), healing)
	}

	if applied == 0 {
		pc.State = models.StateFixFailed
		return pc, nil
	}
	pc.State = models.StateValidating
	return pc, nil
}

func (c *Corrector) apply(ch oracle.FileChange) error {
	if c.DryWrite {
		_, err := c.Sandbox.Resolve(ch.Path)
		return err
	}
	return c.Sandbox.WriteFile(ch.Path, []byte(ch.Content))
}

// kindsFor collects the issue kinds recorded against a file.
func kindsFor(issues []models.Issue, path string) []string {
	var kinds []string
	seen := make(map[string]bool)
	for _, is := range issues {
		if is.File == path && !seen[is.Kind] {
			seen[is.Kind] = true
			kinds = append(kinds, is.Kind)
		}
	}
	return kinds
}

var _ pipeline.Stage = (*Corrector)(nil)
