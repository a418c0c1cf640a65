// Package analyze runs a static-analysis command over the target and
// parses its findings into issues the pipeline can act on.
package analyze

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mendworks/mend/pkg/models"
)

// finding is one entry of pylint-style JSON output.
type finding struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Message   string `json:"message"`
	Symbol    string `json:"symbol"`
	MessageID string `json:"message-id"`
}

// severityFor maps linter categories onto the pipeline's three severities.
// Unknown categories are treated as informational.
func severityFor(linterType string) models.Severity {
	switch strings.ToLower(linterType) {
	case "fatal", "error":
		return models.SeverityCritical
	case "warning":
		return models.SeverityWarning
	default:
		// convention, refactor, information
		return models.SeverityInfo
	}
}

// ParseFindings decodes linter JSON output into issues. Empty output means
// a clean file, not an error. fallbackPath is used when a finding omits its
// own path.
func ParseFindings(output []byte, fallbackPath string) ([]models.Issue, error) {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return nil, nil
	}
	// Linters sometimes prepend warnings before the JSON array.
	if i := strings.IndexByte(trimmed, '['); i > 0 {
		trimmed = trimmed[i:]
	}

	var raw []finding
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, fmt.Errorf("analyze: decoding linter output: %w", err)
	}

	issues := make([]models.Issue, 0, len(raw))
	for _, f := range raw {
		path := f.Path
		if path == "" {
			path = fallbackPath
		}
		kind := f.Symbol
		if kind == "" {
			kind = f.MessageID
		}
		issues = append(issues, models.Issue{
			File:        path,
			Line:        f.Line,
			Kind:        kind,
			Description: f.Message,
			Severity:    severityFor(f.Type),
		})
	}
	return issues, nil
}
