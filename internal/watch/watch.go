// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch reruns a build whenever files under a source tree change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of events (editors often write a file
// several times on save) into one rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Watcher triggers Rebuild after changes under Root settle.
type Watcher struct {
	Root string
	// Ignore lists directories whose events never trigger a rebuild,
	// typically the build directory.
	Ignore   []string
	Debounce time.Duration
	// Rebuild runs on the watch loop itself, so rebuilds never overlap.
	Rebuild func(ctx context.Context) error
}

// Run builds once, then watches until ctx is done. Rebuild errors are
// logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer fw.Close()

	if err := w.addDirs(fw, w.Root); err != nil {
		return err
	}

	w.rebuild(ctx)

	timer := time.NewTimer(debounce)
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
			if w.ignored(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.addDirs(fw, ev.Name)
				}
			}
			slog.Debug("file change detected", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		case <-timer.C:
			w.rebuild(ctx)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	if err := w.Rebuild(ctx); err != nil {
		slog.Warn("rebuild failed", "error", err)
	}
}

func (w *Watcher) addDirs(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (w.ignoredDir(path) || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			slog.Warn("watch add failed", "dir", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) ignoredDir(path string) bool {
	for _, dir := range w.Ignore {
		if rel, err := filepath.Rel(dir, path); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

func (w *Watcher) ignored(path string) bool {
	return w.ignoredDir(path) || IgnoreFile(path)
}

// IgnoreFile reports whether a change to path should never trigger a
// rebuild: hidden files, editor swap and backup files, and OS metadata.
func IgnoreFile(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
