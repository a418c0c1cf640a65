package pipeline

import (
	"context"

	"github.com/mendworks/mend/pkg/models"
)

// Stage is one of the three pipeline capabilities. A stage receives the
// baton, does its work, advances the baton's state to one of its permitted
// exit states, and returns the baton. A non-nil error means the stage
// crashed and the run must abort; an expected negative outcome such as a
// failed validation is expressed through the returned state instead.
//
// Permitted exit states:
//
//	Analyzer:  IssuesDetected, Completed, Aborted
//	Corrector: Validating, FixSucceeded, FixFailed
//	Validator: FixSucceeded, FixFailed, Aborted
type Stage interface {
	Name() models.Stage
	Execute(ctx context.Context, pc *Context) (*Context, error)
}

// StageFunc adapts a function to the Stage interface. Used by tests and by
// dry-run wiring.
type StageFunc struct {
	Role models.Stage
	Fn   func(ctx context.Context, pc *Context) (*Context, error)
}

// Name returns the stage's role.
func (s StageFunc) Name() models.Stage { return s.Role }

// Execute calls the wrapped function.
func (s StageFunc) Execute(ctx context.Context, pc *Context) (*Context, error) {
	return s.Fn(ctx, pc)
}
