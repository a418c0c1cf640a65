package oracle

import (
	"fmt"
	"strings"
)

// maxPromptBytes caps the source material included in a single request.
// Roughly 8k tokens at four bytes per token.
const maxPromptBytes = 32_000

const analysisSystemPrompt = `You are a code auditor. You receive source files and raw linter
findings. Confirm which findings are real defects, discard false
positives, and report additional defects the linter missed.

Respond with a JSON array only, no prose. Each element:
{"file": "path", "line": 0, "kind": "short_id", "description": "...",
 "severity": "critical|warning|info", "suggested_fix": "optional hint"}`

const correctionSystemPrompt = `You are a code fixer. You receive source files and a list of
confirmed defects. Produce corrected files that fix every defect
without changing behavior that is not broken.

Respond with a JSON array only, no prose. Each element:
{"path": "file path", "content": "complete corrected file content",
 "summary": "one-line description of the change"}`

const healingSystemPrompt = `You are a code fixer in self-healing mode. Your previous fix was
tested and FAILED. You receive the current files (with your previous
fixes applied), the original defects, the names of the failing tests,
and the test failure logs. Work out why the tests failed and produce a
new fix that addresses both the defects and the failures without
introducing new bugs.

Respond with a JSON array only, no prose. Each element:
{"path": "file path", "content": "complete corrected file content",
 "summary": "one-line description of the change"}`

// buildAnalysisPrompt renders the user message for issue triage.
func buildAnalysisPrompt(req AnalysisRequest) string {
	var b strings.Builder
	b.WriteString("Source files:\n")
	writeFiles(&b, req.Files)
	b.WriteString("\nLinter findings:\n")
	if len(req.Findings) == 0 {
		b.WriteString("(none)\n")
	}
	for _, is := range req.Findings {
		fmt.Fprintf(&b, "- %s:%d [%s/%s] %s\n", is.File, is.Line, is.Severity, is.Kind, is.Description)
	}
	return b.String()
}

// buildCorrectionPrompt renders the user message for fix generation. When
// the request carries failure logs the prompt replays them, turning the
// call into a healing retry.
func buildCorrectionPrompt(req CorrectionRequest) string {
	var b strings.Builder
	b.WriteString("Source files:\n")
	writeFiles(&b, req.Files)
	b.WriteString("\nDefects to fix:\n")
	for _, is := range req.Issues {
		fmt.Fprintf(&b, "- %s:%d [%s/%s] %s", is.File, is.Line, is.Severity, is.Kind, is.Description)
		if is.SuggestedFix != "" {
			fmt.Fprintf(&b, " (hint: %s)", is.SuggestedFix)
		}
		b.WriteByte('\n')
	}
	if len(req.FailureLogs) > 0 {
		b.WriteString("\nYour previous fix failed these tests:\n")
		for _, name := range req.FailedTests {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("\nFailure logs:\n")
		b.WriteString(truncate(strings.Join(req.FailureLogs, "\n"), maxPromptBytes/4))
		b.WriteByte('\n')
	}
	return b.String()
}

func writeFiles(b *strings.Builder, files []SourceFile) {
	budget := maxPromptBytes
	for _, f := range files {
		content := truncate(f.Content, budget)
		fmt.Fprintf(b, "--- %s ---\n%s\n", f.Path, content)
		budget -= len(content)
		if budget <= 0 {
			b.WriteString("(remaining files omitted for size)\n")
			return
		}
	}
}

// truncate cuts s to at most n bytes at a line boundary, marking the cut.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i]
	}
	return cut + "\n... (truncated)"
}
