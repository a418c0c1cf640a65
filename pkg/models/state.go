// Package models defines the shared data types for the mend pipeline.
package models

// State represents the current position of a run in the repair pipeline.
type State string

const (
	// StateIdle indicates the run has not started.
	StateIdle State = "idle"
	// StateListening indicates the analyzer is inspecting the target.
	StateListening State = "listening"
	// StateIssuesDetected indicates the analyzer found issues to fix.
	StateIssuesDetected State = "issues_detected"
	// StateCorrecting indicates the corrector is applying fixes.
	StateCorrecting State = "correcting"
	// StateValidating indicates corrections are awaiting judgment.
	StateValidating State = "validating"
	// StateFixSucceeded indicates the validator accepted the corrections.
	StateFixSucceeded State = "fix_succeeded"
	// StateFixFailed indicates the validator rejected the corrections.
	// This is an expected outcome that drives the self-healing retry, not an error.
	StateFixFailed State = "fix_failed"
	// StateCompleted indicates the run finished with the target clean.
	StateCompleted State = "completed"
	// StateAborted indicates a stage failed fatally and the run stopped.
	StateAborted State = "aborted"
)

// Valid returns true if the state is a known value.
func (s State) Valid() bool {
	switch s {
	case StateIdle, StateListening, StateIssuesDetected, StateCorrecting,
		StateValidating, StateFixSucceeded, StateFixFailed, StateCompleted, StateAborted:
		return true
	default:
		return false
	}
}

// Terminal returns true if no further transitions occur from this state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAborted
}

// Outcome returns true for states that carry a verdict worth preserving in
// the final context. Non-outcome states are normalized to StateCompleted
// when a run ends.
func (s State) Outcome() bool {
	switch s {
	case StateFixSucceeded, StateFixFailed, StateCompleted, StateAborted:
		return true
	default:
		return false
	}
}

// Stage identifies one of the three pipeline roles.
type Stage string

const (
	// StageAnalyzer inspects the target and produces issues.
	StageAnalyzer Stage = "analyzer"
	// StageCorrector applies fixes for detected issues.
	StageCorrector Stage = "corrector"
	// StageValidator judges corrections by running the test suite.
	StageValidator Stage = "validator"
)

// Valid returns true if the stage is a known role.
func (s Stage) Valid() bool {
	switch s {
	case StageAnalyzer, StageCorrector, StageValidator:
		return true
	default:
		return false
	}
}

// EnteringState returns the pipeline state set when control is handed to
// this stage.
func (s Stage) EnteringState() State {
	switch s {
	case StageAnalyzer:
		return StateListening
	case StageCorrector:
		return StateCorrecting
	case StageValidator:
		return StateValidating
	default:
		return StateIdle
	}
}
