// Package pipeline implements the analyze, correct, validate relay that
// drives a mend run. The orchestrator hands a single Context baton from
// stage to stage until a stop condition is met.
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/mendworks/mend/pkg/models"
)

// Context is the baton passed between pipeline stages. Exactly one stage
// owns it at a time; stages receive it, mutate their copy, and return it
// to the orchestrator.
type Context struct {
	// RunID is a short identifier for this run.
	RunID string `json:"run_id"`
	// TargetDir is the absolute path of the directory being repaired.
	TargetDir string `json:"target_dir"`
	// State is the current pipeline state.
	State models.State `json:"state"`
	// CurrentStage is the stage holding the baton, empty between handovers.
	CurrentStage models.Stage `json:"current_stage,omitempty"`
	// Iteration counts work passes: it increments each time the baton is
	// handed to the analyzer or the corrector.
	Iteration int `json:"iteration"`
	// MaxIterations is the retry budget for the run.
	MaxIterations int `json:"max_iterations"`
	// Issues holds the analyzer's findings, most urgent first.
	Issues []models.Issue `json:"issues,omitempty"`
	// AppliedFixes is the audit trail of corrections, in application order.
	AppliedFixes []models.FixRecord `json:"applied_fixes,omitempty"`
	// Validations records every validator verdict, in order.
	Validations []models.ValidationRecord `json:"validations,omitempty"`
	// TestFailureLogs carries the latest failure output back to the
	// corrector. The corrector clears it after consuming it.
	TestFailureLogs []string `json:"test_failure_logs,omitempty"`
	// LastFailedTests names the failing tests from the most recent
	// validation.
	LastFailedTests []string `json:"last_failed_tests,omitempty"`
	// HealingAttempts counts validator rejections. Only the orchestrator
	// writes this field.
	HealingAttempts int `json:"healing_attempts"`
	// ErrorLog collects fatal stage errors.
	ErrorLog []string `json:"error_log,omitempty"`
	// StartedAt and EndedAt bracket the run.
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitzero"`
}

// NewContext creates a fresh baton in the Idle state.
func NewContext(targetDir string, maxIterations int) *Context {
	return &Context{
		RunID:         uuid.New().String()[:8],
		TargetDir:     targetDir,
		State:         models.StateIdle,
		MaxIterations: maxIterations,
		StartedAt:     time.Now(),
	}
}

// Clone returns a deep copy of the context. Stages operate on a clone so a
// crashing stage cannot leave the orchestrator's baton half-mutated.
func (c *Context) Clone() *Context {
	cp := *c
	cp.Issues = append([]models.Issue(nil), c.Issues...)
	cp.AppliedFixes = append([]models.FixRecord(nil), c.AppliedFixes...)
	cp.Validations = append([]models.ValidationRecord(nil), c.Validations...)
	cp.TestFailureLogs = append([]string(nil), c.TestFailureLogs...)
	cp.LastFailedTests = append([]string(nil), c.LastFailedTests...)
	cp.ErrorLog = append([]string(nil), c.ErrorLog...)
	return &cp
}

// LastValidation returns the most recent validator verdict, or nil if the
// validator has not run.
func (c *Context) LastValidation() *models.ValidationRecord {
	if len(c.Validations) == 0 {
		return nil
	}
	return &c.Validations[len(c.Validations)-1]
}

// UnresolvedIssues reports whether any analyzer findings remain without a
// validated fix. Once the validator accepts the corrections, the slate is
// considered clean.
func (c *Context) UnresolvedIssues() bool {
	if len(c.Issues) == 0 {
		return false
	}
	last := c.LastValidation()
	return last == nil || !last.Passed
}
