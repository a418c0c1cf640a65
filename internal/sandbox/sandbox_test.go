package sandbox

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newSandbox(t *testing.T) *Sandbox {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewRejectsMissingRoot(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing root")
	}
	if _, err := New(""); err == nil {
		t.Error("expected error for empty root")
	}
}

func TestResolveRelativePath(t *testing.T) {
	s := newSandbox(t)
	got, err := s.Resolve("src/calc.py")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := filepath.Join(s.Root(), "src", "calc.py")
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveBlocksEscapes(t *testing.T) {
	s := newSandbox(t)
	for _, p := range []string{
		"../../etc/passwd",
		"/etc/passwd",
		"~/secrets",
		"sub/../../escape",
		"",
	} {
		if _, err := s.Resolve(p); !errors.Is(err, ErrOutsideSandbox) {
			t.Errorf("Resolve(%q) = %v, want ErrOutsideSandbox", p, err)
		}
	}
}

func TestResolveBlocksEscapingSymlink(t *testing.T) {
	outside := t.TempDir()
	s := newSandbox(t)
	link := filepath.Join(s.Root(), "link")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if _, err := s.Resolve("link"); !errors.Is(err, ErrOutsideSandbox) {
		t.Errorf("Resolve(link) = %v, want ErrOutsideSandbox", err)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	s := newSandbox(t)
	if err := s.WriteFile("pkg/util.py", []byte("x = 1\n")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := s.ReadFile("pkg/util.py")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "x = 1\n" {
		t.Errorf("ReadFile = %q", data)
	}
	if err := s.WriteFile("../escape.py", nil); !errors.Is(err, ErrOutsideSandbox) {
		t.Errorf("WriteFile outside sandbox = %v, want ErrOutsideSandbox", err)
	}
}

func TestSourceFiles(t *testing.T) {
	s := newSandbox(t)
	for _, p := range []string{"a.py", "src/b.py", "src/c.txt", "__pycache__/d.py", ".git/e.py"} {
		if err := s.WriteFile(p, []byte("pass\n")); err != nil {
			t.Fatalf("WriteFile(%s): %v", p, err)
		}
	}
	files, err := s.SourceFiles(".py")
	if err != nil {
		t.Fatalf("SourceFiles: %v", err)
	}
	want := []string{"a.py", filepath.Join("src", "b.py")}
	if len(files) != len(want) {
		t.Fatalf("SourceFiles = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("SourceFiles[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}
