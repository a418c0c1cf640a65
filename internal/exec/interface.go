// Package exec provides an interface for command execution.
package exec

import (
	"context"
)

// CommandRunner defines the interface for running external commands such
// as linters and test runners. The abstraction allows mocking command
// execution in tests.
type CommandRunner interface {
	// Run executes a command and returns combined stdout/stderr output.
	// The working directory is set to workDir if non-empty. A non-zero
	// exit is returned as an error alongside the captured output.
	Run(ctx context.Context, workDir string, name string, args ...string) (output []byte, err error)
}
