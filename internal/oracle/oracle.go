// Package oracle provides the external computation backing the three
// pipeline stages: issue triage and fix generation via the Anthropic API.
package oracle

import (
	"context"

	"github.com/mendworks/mend/pkg/models"
)

// SourceFile is one file handed to the oracle for inspection.
type SourceFile struct {
	Path    string
	Content string
}

// FileChange is a complete replacement for one file, proposed by the
// oracle. The corrector writes it through the sandbox.
type FileChange struct {
	// Path is relative to the target root.
	Path string `json:"path"`
	// Content is the full new file content.
	Content string `json:"content"`
	// Summary describes the change in one line.
	Summary string `json:"summary"`
}

// AnalysisRequest asks the oracle to triage linter findings against the
// source, confirming real defects and spotting ones the linter missed.
type AnalysisRequest struct {
	Files    []SourceFile
	Findings []models.Issue
}

// CorrectionRequest asks the oracle for fixes. FailureLogs is non-empty on
// a healing retry, in which case the oracle is told the previous attempt
// and must address the failing tests.
type CorrectionRequest struct {
	Files       []SourceFile
	Issues      []models.Issue
	FailureLogs []string
	FailedTests []string
}

// Oracle is the external computation behind the analyzer and corrector.
// Implementations must be safe for sequential reuse across iterations.
type Oracle interface {
	ProposeIssues(ctx context.Context, req AnalysisRequest) ([]models.Issue, error)
	ProposeFixes(ctx context.Context, req CorrectionRequest) ([]FileChange, error)
}
