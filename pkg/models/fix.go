package models

import "time"

// FixRecord is one correction applied by the corrector stage.
type FixRecord struct {
	// File is the path of the modified file, relative to the target root.
	File string `json:"file"`
	// Summary describes what the fix changed.
	Summary string `json:"summary"`
	// IssueKinds lists the issue kinds the fix addresses.
	IssueKinds []string `json:"issue_kinds,omitempty"`
	// Iteration is the work pass during which the fix was applied.
	Iteration int `json:"iteration"`
	// Healing is true when the fix was produced from test failure logs
	// rather than from the analyzer's findings.
	Healing bool `json:"healing,omitempty"`
	// AppliedAt is when the file was written.
	AppliedAt time.Time `json:"applied_at"`
}
