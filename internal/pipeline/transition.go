package pipeline

import "github.com/mendworks/mend/pkg/models"

// NextStage is the pipeline's transition function: a pure mapping from the
// baton's current state to the stage that should run next. The second
// return is false when no stage should run, which hands the decision to
// Evaluate. Both the relay loop and the graph build on this single table.
func NextStage(pc *Context) (models.Stage, bool) {
	switch pc.State {
	case models.StateIdle:
		return models.StageAnalyzer, true
	case models.StateIssuesDetected:
		return models.StageCorrector, true
	case models.StateValidating:
		return models.StageValidator, true
	case models.StateFixSucceeded:
		// The corrector can exit here directly when nothing needed
		// changing; if findings remain without a passing validation,
		// hand the baton back to it.
		if pc.UnresolvedIssues() {
			return models.StageCorrector, true
		}
		return "", false
	case models.StateFixFailed:
		// The self-healing retry: rejected corrections go back to the
		// corrector while budget remains.
		if pc.Iteration < pc.MaxIterations {
			return models.StageCorrector, true
		}
		return "", false
	default:
		// Listening and Correcting are intra-stage states and never
		// observed between handovers; Completed and Aborted are terminal.
		return "", false
	}
}

// Evaluate is the stop-condition check, consulted whenever NextStage yields
// no stage. It returns true with a human-readable reason when the run
// should end.
func Evaluate(pc *Context) (bool, string) {
	switch {
	case pc.State == models.StateCompleted:
		return true, "resolved"
	case pc.State == models.StateAborted:
		if len(pc.ErrorLog) > 0 {
			return true, pc.ErrorLog[len(pc.ErrorLog)-1]
		}
		return true, "unknown error"
	case pc.State == models.StateListening && len(pc.Issues) == 0 && pc.Iteration > 0:
		return true, "clean, no issues"
	case pc.State == models.StateFixSucceeded && !pc.UnresolvedIssues():
		return true, "all fixes validated"
	case pc.Iteration >= pc.MaxIterations:
		return true, "max iterations reached"
	default:
		return false, ""
	}
}
