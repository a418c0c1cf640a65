package analyze

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/kballard/go-shellquote"

	"github.com/mendworks/mend/internal/exec"
	"github.com/mendworks/mend/internal/sandbox"
	"github.com/mendworks/mend/pkg/models"
)

// Runner executes the configured linter over the sandboxed target.
type Runner struct {
	// Command is the linter invocation, e.g.
	// "pylint --output-format=json". The file under analysis is appended.
	Command string
	Exec    exec.CommandRunner
	Sandbox *sandbox.Sandbox
	Verbose bool
}

// NewRunner creates a linter runner for the sandbox.
func NewRunner(command string, runner exec.CommandRunner, sb *sandbox.Sandbox) *Runner {
	return &Runner{Command: command, Exec: runner, Sandbox: sb}
}

// usageExit is the linter exit bit signalling a usage error rather than
// findings. Finding bits (1..16 for pylint) are expected and not errors.
const usageExit = 32

// Analyze lints every source file in the sandbox and returns the combined
// findings, deduplicated and ordered most urgent first.
func (r *Runner) Analyze(ctx context.Context) ([]models.Issue, error) {
	files, err := r.Sandbox.SourceFiles(".py")
	if err != nil {
		return nil, err
	}

	var all []models.Issue
	for _, f := range files {
		issues, err := r.analyzeFile(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, issues...)
	}
	return Dedupe(all), nil
}

func (r *Runner) analyzeFile(ctx context.Context, relPath string) ([]models.Issue, error) {
	args, err := shellquote.Split(r.Command)
	if err != nil {
		return nil, fmt.Errorf("analyze: parsing linter command %q: %w", r.Command, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("analyze: empty linter command")
	}
	args = append(args, relPath)

	out, runErr := r.Exec.Run(ctx, r.Sandbox.Root(), args[0], args[1:]...)
	if runErr != nil {
		code := exec.ExitCode(runErr)
		// A non-zero exit below the usage bit just means findings.
		if code < 0 || code >= usageExit {
			return nil, fmt.Errorf("analyze: running linter on %s: %w (output: %s)", relPath, runErr, out)
		}
	}
	if r.Verbose {
		log.Printf("[analyze] %s: exit=%d output=%d bytes", relPath, exec.ExitCode(runErr), len(out))
	}

	issues, err := ParseFindings(out, relPath)
	if err != nil {
		return nil, fmt.Errorf("analyze: %s: %w", relPath, err)
	}
	return issues, nil
}

// Dedupe removes duplicate findings and sorts the rest most urgent first,
// then by file and line for stable output.
func Dedupe(issues []models.Issue) []models.Issue {
	seen := make(map[string]bool, len(issues))
	out := issues[:0]
	for _, is := range issues {
		k := is.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, is)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Severity != b.Severity {
			return a.Severity.MoreUrgentThan(b.Severity)
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
	return out
}
