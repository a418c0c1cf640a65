package testrun

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/mendworks/mend/internal/exec"
)

// DefaultTimeout bounds a single test-suite execution.
const DefaultTimeout = 2 * time.Minute

// Runner executes the configured test command inside the target directory.
type Runner struct {
	// Command is the full test invocation, e.g. "pytest -v".
	Command string
	// Dir is the working directory for the run.
	Dir string
	// Timeout bounds the run; DefaultTimeout when zero.
	Timeout time.Duration
	Exec    exec.CommandRunner
	Verbose bool
}

// NewRunner creates a test runner for the given directory.
func NewRunner(command, dir string, runner exec.CommandRunner) *Runner {
	return &Runner{Command: command, Dir: dir, Exec: runner}
}

// Run executes the test suite once. A failing suite is a successful Run
// with Result.Passed false; the error return is reserved for not being
// able to execute the suite at all.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	args, err := shellquote.Split(r.Command)
	if err != nil {
		return Result{}, fmt.Errorf("testrun: parsing test command %q: %w", r.Command, err)
	}
	if len(args) == 0 {
		return Result{}, fmt.Errorf("testrun: empty test command")
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	out, runErr := r.Exec.Run(ctx, r.Dir, args[0], args[1:]...)
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		return Result{}, fmt.Errorf("testrun: test suite timed out after %s", timeout)
	}
	code := 0
	if runErr != nil {
		code = exec.ExitCode(runErr)
		if code < 0 {
			return Result{}, fmt.Errorf("testrun: running %q: %w", r.Command, runErr)
		}
	}

	res := ParseOutput(string(out), code)
	res.Duration = elapsed
	if r.Verbose {
		log.Printf("[testrun] passed=%v (%d passed, %d failed) in %s",
			res.Passed, res.PassedCount, res.FailedCount, elapsed.Round(time.Millisecond))
	}
	return res, nil
}
