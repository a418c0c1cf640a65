package sandbox

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// skipDirs are directory names never descended into during discovery.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".mend":        true,
	"__pycache__":  true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
}

// ReadFile reads a file after validating its path against the sandbox.
func (s *Sandbox) ReadFile(p string) ([]byte, error) {
	abs, err := s.Resolve(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("sandbox: reading %s: %w", s.Rel(abs), err)
	}
	return data, nil
}

// WriteFile writes a file after validating its path against the sandbox,
// creating parent directories inside the root as needed.
func (s *Sandbox) WriteFile(p string, data []byte) error {
	abs, err := s.Resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("sandbox: creating parent for %s: %w", s.Rel(abs), err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("sandbox: writing %s: %w", s.Rel(abs), err)
	}
	return nil
}

// SourceFiles walks the sandbox and returns the relative paths of files
// with any of the given extensions (e.g. ".py"), sorted. Hidden
// directories and common dependency directories are skipped.
func (s *Sandbox) SourceFiles(exts ...string) ([]string, error) {
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[e] = true
	}
	var files []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != s.root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if want[filepath.Ext(name)] {
			files = append(files, s.Rel(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sandbox: walking %s: %w", s.root, err)
	}
	sort.Strings(files)
	return files, nil
}
