// Package watch triggers rebuilds when project sources change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// skipDirs are never watched: build outputs, tool caches and VCS metadata.
var skipDirs = map[string]bool{
	"build":        true,
	".gradle":      true,
	".git":         true,
	".idea":        true,
	".droidloop":   true,
	".cxx":         true,
	"node_modules": true,
}

// Watcher reports batches of changed files under a set of directories.
type Watcher struct {
	// Paths are watched recursively.
	Paths []string

	// Debounce is how long the tree must be quiet before a batch fires.
	Debounce time.Duration

	// Ready, when set, is called once every directory is being watched.
	Ready func()

	logger *log.Logger
}

// New creates a Watcher.
//
// Parameters:
//   - paths: Directories to watch recursively
//   - debounce: Quiet period before a batch fires; DefaultDebounce when zero
//   - logger: Logger for debug output
//
// Returns:
//   - *Watcher: A watcher ready to Run
func New(paths []string, debounce time.Duration, logger *log.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{Paths: paths, Debounce: debounce, logger: logger}
}

// Run watches until ctx is done, calling onChange with the sorted set of
// changed files after each quiet period. onChange runs on the watch
// goroutine; changes made while it runs are delivered in the next batch.
// An error from onChange stops the watch and is returned.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	watched := 0
	for _, p := range w.Paths {
		n, err := w.addTree(fw, p)
		if err != nil {
			return err
		}
		watched += n
	}
	if watched == 0 {
		return fmt.Errorf("nothing to watch in %s", strings.Join(w.Paths, ", "))
	}
	w.logger.Debug("Watching", "dirs", watched, "debounce", w.Debounce)
	if w.Ready != nil {
		w.Ready()
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if _, err := w.addTree(fw, ev.Name); err != nil {
						w.logger.Debug("Failed to watch new directory", "dir", ev.Name, "error", err)
					}
					continue
				}
			}
			if !relevant(ev) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(w.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Debug("Watch error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			if err := onChange(ctx, changed); err != nil {
				return err
			}
		}
	}
}

// addTree watches root and every non-skipped directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("failed to watch %s: %w", root, err)
	}
	return count, nil
}

// relevant filters out attribute changes and editor scratch files.
func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(ev.Name)
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".tmp"),
		strings.HasPrefix(base, ".#"),
		base == ".DS_Store":
		return false
	}
	return true
}
