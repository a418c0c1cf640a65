// Package testrun executes the target's test suite and turns its output
// into a structured verdict for the validator stage.
package testrun

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of one test-suite execution.
type Result struct {
	// Passed is true when the suite exited clean with no failing tests.
	Passed bool
	// PassedCount and FailedCount come from the summary line.
	PassedCount int
	FailedCount int
	ErrorCount  int
	// FailedTests names failing tests in report order.
	FailedTests []string
	// FailureOutput holds the lines relevant to the failures, for the
	// healing retry.
	FailureOutput string
	// Duration is wall-clock time of the run.
	Duration time.Duration
}

var (
	passedRe  = regexp.MustCompile(`(\d+)\s+passed`)
	failedRe  = regexp.MustCompile(`(\d+)\s+failed`)
	errorRe   = regexp.MustCompile(`(\d+)\s+error`)
	verdictRe = regexp.MustCompile(`([\w/\\.]+\.py)::(\w+)\s+(PASSED|FAILED|ERROR|SKIPPED)`)
	// Short-summary form: "FAILED tests/test_calc.py::test_divide - ZeroDivisionError".
	shortFailRe = regexp.MustCompile(`(?m)^FAILED\s+(\S+)(?:\s+-\s+(.*))?$`)
)

// ParseOutput interprets pytest-style output. exitCode 0 with no parsed
// failures means success; any failing or errored test means failure
// regardless of exit code.
func ParseOutput(output string, exitCode int) Result {
	var res Result

	if m := passedRe.FindStringSubmatch(output); m != nil {
		res.PassedCount, _ = strconv.Atoi(m[1])
	}
	if m := failedRe.FindStringSubmatch(output); m != nil {
		res.FailedCount, _ = strconv.Atoi(m[1])
	}
	if m := errorRe.FindStringSubmatch(output); m != nil {
		res.ErrorCount, _ = strconv.Atoi(m[1])
	}

	seen := make(map[string]bool)
	for _, m := range verdictRe.FindAllStringSubmatch(output, -1) {
		if m[3] != "FAILED" && m[3] != "ERROR" {
			continue
		}
		name := m[1] + "::" + m[2]
		if !seen[name] {
			seen[name] = true
			res.FailedTests = append(res.FailedTests, name)
		}
	}
	for _, m := range shortFailRe.FindAllStringSubmatch(output, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			res.FailedTests = append(res.FailedTests, m[1])
		}
	}

	res.Passed = exitCode == 0 && res.FailedCount == 0 && res.ErrorCount == 0
	if !res.Passed {
		res.FailureOutput = failureLines(output)
	}
	return res
}

// failureLines keeps the portion of the output useful for a retry prompt:
// the FAILED lines and the final summary. Falls back to the whole output
// when nothing matches.
func failureLines(output string) string {
	var kept []string
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "FAILED") ||
			strings.HasPrefix(trimmed, "ERROR") ||
			strings.HasPrefix(trimmed, "E ") ||
			strings.Contains(trimmed, " passed") ||
			strings.Contains(trimmed, " failed") {
			kept = append(kept, trimmed)
		}
	}
	if len(kept) == 0 {
		return strings.TrimSpace(output)
	}
	return strings.Join(kept, "\n")
}
