package models

import "strconv"

// Severity classifies how urgent an issue is.
type Severity string

const (
	// SeverityCritical indicates an issue that will break the code at runtime.
	SeverityCritical Severity = "critical"
	// SeverityWarning indicates an issue that is likely a defect.
	SeverityWarning Severity = "warning"
	// SeverityInfo indicates a stylistic or informational finding.
	SeverityInfo Severity = "info"
)

// Valid returns true if the severity is a known value.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return true
	default:
		return false
	}
}

// rank orders severities for sorting, most urgent first.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// MoreUrgentThan reports whether s should be fixed before other.
func (s Severity) MoreUrgentThan(other Severity) bool {
	return s.rank() < other.rank()
}

// Issue is a single defect detected by the analyzer.
// Issues are immutable once created.
type Issue struct {
	// File is the path of the affected file, relative to the target root.
	File string `json:"file"`
	// Line is the 1-based line number, or 0 if the issue is file-wide.
	Line int `json:"line,omitempty"`
	// Kind categorizes the issue (e.g. "logic_error", "undefined_name").
	Kind string `json:"kind"`
	// Description explains the defect.
	Description string `json:"description"`
	// Severity is the urgency of the issue.
	Severity Severity `json:"severity"`
	// SuggestedFix is an optional hint from the analyzer.
	SuggestedFix string `json:"suggested_fix,omitempty"`
}

// Key returns a deduplication key for the issue. Two findings on the same
// file and line with the same kind are considered the same issue.
func (i Issue) Key() string {
	return i.File + "\x00" + i.Kind + "\x00" + strconv.Itoa(i.Line)
}
