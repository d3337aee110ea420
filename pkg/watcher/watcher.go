// Package watcher reports debounced changes to a set of input files.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher collects change events for a fixed set of files and reports
// them in batches once the files have been quiet for the debounce period.
// The parent directories are watched so editors that replace a file on
// save are noticed too.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	files   map[string]bool
	pending map[string]bool
	timer   *time.Timer
}

// NewFileWatcher creates a watcher with the given quiet period
func NewFileWatcher(debounce time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &FileWatcher{
		watcher:  w,
		debounce: debounce,
		files:    map[string]bool{},
		pending:  map[string]bool{},
	}, nil
}

// Add starts watching files
func (fw *FileWatcher) Add(files ...string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	dirs := map[string]bool{}
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}
		fw.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return nil
}

// Files returns the watched files, sorted
func (fw *FileWatcher) Files() []string {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	out := make([]string, 0, len(fw.files))
	for f := range fw.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Run delivers batches of changed files to onChange until ctx is done or
// the watcher is closed. onChange runs on the timer goroutine, one batch at
// a time.
func (fw *FileWatcher) Run(ctx context.Context, onChange func(changed []string)) error {
	var delivering sync.Mutex
	flush := func() {
		fw.mu.Lock()
		changed := make([]string, 0, len(fw.pending))
		for f := range fw.pending {
			changed = append(changed, f)
		}
		fw.pending = map[string]bool{}
		fw.mu.Unlock()

		if len(changed) > 0 {
			sort.Strings(changed)
			delivering.Lock()
			onChange(changed)
			delivering.Unlock()
		}
	}

	for {
		select {
		case <-ctx.Done():
			fw.stopTimer()
			return ctx.Err()

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fw.record(filepath.Clean(event.Name), flush)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "err", err)
		}
	}
}

// record marks file as changed and restarts the quiet period
func (fw *FileWatcher) record(file string, flush func()) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.files[file] {
		return
	}
	fw.pending[file] = true
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, flush)
}

func (fw *FileWatcher) stopTimer() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
}

// Close stops watching
func (fw *FileWatcher) Close() error {
	fw.stopTimer()
	return fw.watcher.Close()
}
