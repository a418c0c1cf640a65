package stages

import (
	"context"
	"log"
	"time"

	"github.com/mendworks/mend/internal/pipeline"
	"github.com/mendworks/mend/internal/testrun"
	"github.com/mendworks/mend/pkg/models"
)

// Validator judges the corrector's work by running the target's test
// suite. A failing suite is an expected outcome that feeds the healing
// retry; only infrastructure failures are fatal.
type Validator struct {
	Tests   *testrun.Runner
	Verbose bool
}

// Name returns the validator role.
func (v *Validator) Name() models.Stage { return models.StageValidator }

// Execute runs the suite once and records the verdict on the baton.
func (v *Validator) Execute(ctx context.Context, pc *pipeline.Context) (*pipeline.Context, error) {
	res, err := v.Tests.Run(ctx)
	if err != nil {
		return nil, err
	}

	rec := models.ValidationRecord{
		Passed:      res.Passed,
		TestsPassed: res.PassedCount,
		TestsFailed: res.FailedCount + res.ErrorCount,
		FailedTests: res.FailedTests,
		Iteration:   pc.Iteration,
		Duration:    res.Duration,
		CheckedAt:   time.Now(),
	}
	if !res.Passed {
		rec.FailureLogs = res.FailureOutput
	}
	pc.Validations = append(pc.Validations, rec)

	if v.Verbose {
		log.Printf("[validator] run %s: passed=%v (%d passed, %d failed)",
			pc.RunID, res.Passed, res.PassedCount, res.FailedCount)
	}

	if res.Passed {
		pc.State = models.StateFixSucceeded
		pc.TestFailureLogs = nil
		pc.LastFailedTests = nil
		return pc, nil
	}

	pc.State = models.StateFixFailed
	pc.TestFailureLogs = append(pc.TestFailureLogs, res.FailureOutput)
	pc.LastFailedTests = res.FailedTests
	return pc, nil
}

var _ pipeline.Stage = (*Validator)(nil)
