// Package sandbox confines all pipeline file access to the target
// directory. Every path a stage touches is resolved through the sandbox
// first, so a malformed path from the oracle can never reach files outside
// the directory under repair.
package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideSandbox is returned when a path resolves outside the sandbox
// root, including via traversal, absolute paths, or symlinks.
var ErrOutsideSandbox = errors.New("sandbox: path outside target directory")

// Sandbox validates and resolves paths against a single allowed root.
type Sandbox struct {
	root string
}

// New creates a sandbox rooted at dir. The directory must exist.
func New(dir string) (*Sandbox, error) {
	if dir == "" {
		return nil, errors.New("sandbox: empty root directory")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("sandbox: resolving root: %w", err)
	}
	// Resolve symlinks in the root itself so containment checks compare
	// like with like on systems where the temp dir is a symlink.
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("sandbox: root %s: %w", dir, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("sandbox: root %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sandbox: root %s is not a directory", dir)
	}
	return &Sandbox{root: resolved}, nil
}

// Root returns the sandbox's absolute root directory.
func (s *Sandbox) Root() string { return s.root }

// Resolve validates p and returns its absolute path inside the sandbox.
// Relative paths are resolved against the root. Home directory references,
// traversal out of the root, and symlinks escaping the root all return
// ErrOutsideSandbox.
func (s *Sandbox) Resolve(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrOutsideSandbox)
	}
	if strings.HasPrefix(p, "~") {
		return "", fmt.Errorf("%w: %s", ErrOutsideSandbox, p)
	}
	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.root, abs)
	}
	abs = filepath.Clean(abs)
	if !s.contains(abs) {
		return "", fmt.Errorf("%w: %s", ErrOutsideSandbox, p)
	}
	// A symlink inside the root may still point outside it.
	if target, err := filepath.EvalSymlinks(abs); err == nil {
		if !s.contains(target) {
			return "", fmt.Errorf("%w: %s resolves to %s", ErrOutsideSandbox, p, target)
		}
		abs = target
	}
	return abs, nil
}

// Rel returns p relative to the sandbox root, for display and records.
func (s *Sandbox) Rel(p string) string {
	if rel, err := filepath.Rel(s.root, p); err == nil {
		return rel
	}
	return p
}

func (s *Sandbox) contains(abs string) bool {
	return abs == s.root || strings.HasPrefix(abs, s.root+string(filepath.Separator))
}
