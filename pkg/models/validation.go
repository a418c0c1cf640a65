package models

import "time"

// ValidationRecord is the outcome of one validator pass over the target's
// test suite.
type ValidationRecord struct {
	// Passed is true when every test passed.
	Passed bool `json:"passed"`
	// TestsPassed and TestsFailed are the counts reported by the test run.
	TestsPassed int `json:"tests_passed"`
	TestsFailed int `json:"tests_failed"`
	// FailedTests names the failing tests, in report order.
	FailedTests []string `json:"failed_tests,omitempty"`
	// FailureLogs is the raw failure output kept for the healing retry.
	FailureLogs string `json:"failure_logs,omitempty"`
	// Iteration is the work pass whose corrections were judged.
	Iteration int `json:"iteration"`
	// Duration is how long the test run took.
	Duration time.Duration `json:"duration"`
	// CheckedAt is when the validation finished.
	CheckedAt time.Time `json:"checked_at"`
}
