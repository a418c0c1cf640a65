// Package watch reruns the pipeline when files in the target directory
// change.
package watch

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long changes are batched before a rerun fires.
const DefaultDebounce = 2 * time.Second

// Watcher observes a directory tree and invokes a callback after changes
// settle. Changes under hidden directories and the .mend state directory
// are ignored, as are the bursts of writes the pipeline itself produces
// while the callback runs.
type Watcher struct {
	root     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	onChange func(ctx context.Context)
}

// New creates a watcher over root. The callback runs on the watcher's
// goroutine; it should return before the next batch of changes matters.
func New(root string, debounce time.Duration, onChange func(ctx context.Context)) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{root: root, debounce: debounce, fsw: fsw, onChange: onChange}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addRecursive registers root and every non-ignored subdirectory.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ignored(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func ignored(name string) bool {
	return strings.HasPrefix(name, ".") || name == "__pycache__" || name == "node_modules" || name == "vendor"
}

// Run blocks, dispatching debounced change callbacks until ctx is
// canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var timer *time.Timer
	var timerC <-chan time.Time
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.ignoredEvent(ev) {
				continue
			}
			// New directories need watching too.
			if ev.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					w.addRecursive(ev.Name)
				}
			}
			pending = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("[watch] error: %v", err)

		case <-timerC:
			if pending {
				pending = false
				w.onChange(ctx)
			}
		}
	}
}

// ignoredEvent filters events under ignored directories.
func (w *Watcher) ignoredEvent(ev fsnotify.Event) bool {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if ignored(part) {
			return true
		}
	}
	return false
}
