package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sessionintel/session-intel/pkg/discovery"
	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/patterns"
	"github.com/sessionintel/session-intel/pkg/store"
)

// DefaultDebounce is how long a transcript must stay quiet before it is
// re-ingested. Claude Code appends to session files continuously while a
// conversation runs.
const DefaultDebounce = 30 * time.Second

// Watcher re-ingests session transcripts as Claude Code writes them.
type Watcher struct {
	Store    *store.Store
	Library  *patterns.Library
	Debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatcher returns a Watcher with the default debounce.
func NewWatcher(st *store.Store, lib *patterns.Library) *Watcher {
	return &Watcher{
		Store:    st,
		Library:  lib,
		Debounce: DefaultDebounce,
		timers:   map[string]*time.Timer{},
	}
}

// Watch blocks watching projectsDir and each project subdirectory until ctx
// is cancelled. New project directories are picked up as they appear; a
// write to a *.jsonl transcript schedules a debounced single-file ingest.
func (w *Watcher) Watch(ctx context.Context, projectsDir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(projectsDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", projectsDir, err)
	}

	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		return fmt.Errorf("failed to read projects directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			dir := filepath.Join(projectsDir, entry.Name())
			if err := watcher.Add(dir); err != nil {
				logger.Warn("Failed to watch %s: %v", dir, err)
			}
		}
	}

	logger.Info("Watching %s (debounce %s)", projectsDir, w.Debounce)

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(watcher, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watcher.Add(event.Name); err != nil {
				logger.Warn("Failed to watch new project dir %s: %v", event.Name, err)
			} else {
				logger.Debug("Watching new project dir %s", event.Name)
			}
			return
		}
	}

	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return
	}
	if !strings.HasSuffix(event.Name, ".jsonl") {
		return
	}
	w.schedule(event.Name)
}

// schedule arms (or re-arms) the per-path debounce timer.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.Debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.ingestPath(path)
	})
}

func (w *Watcher) ingestPath(path string) {
	file, err := discovery.StatSession(path)
	if err != nil {
		logger.Warn("Skipping %s: %v", path, err)
		return
	}
	if file == nil {
		return
	}
	if err := IngestFile(w.Store, w.Library, *file); err != nil {
		logger.Warn("Failed to ingest %s: %v", path, err)
		return
	}
	logger.Info("Re-ingested %s (project %s)", file.SessionID, file.Project)
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}
