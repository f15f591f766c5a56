package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sessionintel/session-intel/pkg/patterns"
	"github.com/sessionintel/session-intel/pkg/store"
	"github.com/sessionintel/session-intel/pkg/types"
)

// waitIngested polls the store until the session shows up or the deadline
// passes. Filesystem events plus the debounce make exact timing unknowable.
func waitIngested(t *testing.T, st *store.Store, rawPath string) bool {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		existing, err := st.Existing(types.SourceClaudeCode)
		if err != nil {
			t.Fatalf("Existing: %v", err)
		}
		if _, ok := existing[rawPath]; ok {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

func TestWatchIngestsAfterQuietPeriod(t *testing.T) {
	projectsDir, st := setupIngestEnv(t)
	projectDir := filepath.Join(projectsDir, "-home-user-my-app")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(st, patterns.Default())
	w.Debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, projectsDir) }()
	time.Sleep(100 * time.Millisecond) // let the watcher register

	rawPath := filepath.Join(projectDir, "watched-session.jsonl")
	if err := os.WriteFile(rawPath, []byte(sampleTranscript), 0644); err != nil {
		t.Fatal(err)
	}

	if !waitIngested(t, st, rawPath) {
		t.Fatal("session was not ingested after the quiet period")
	}
	count, err := st.CountSessions("my-app")
	if err != nil {
		t.Fatalf("CountSessions: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 session, got %d", count)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Watch returned %v, want context.Canceled", err)
	}
}

func TestWatchPicksUpNewProjectDir(t *testing.T) {
	projectsDir, st := setupIngestEnv(t)
	if err := os.MkdirAll(projectsDir, 0755); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(st, patterns.Default())
	w.Debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, projectsDir) }()
	time.Sleep(100 * time.Millisecond)

	// Project directory created after the watcher started.
	projectDir := filepath.Join(projectsDir, "-home-user-fresh-project")
	if err := os.Mkdir(projectDir, 0755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond) // let the watcher add the new dir

	rawPath := filepath.Join(projectDir, "new-session.jsonl")
	if err := os.WriteFile(rawPath, []byte(sampleTranscript), 0644); err != nil {
		t.Fatal(err)
	}

	if !waitIngested(t, st, rawPath) {
		t.Fatal("session in new project dir was not ingested")
	}

	cancel()
	<-done
}

func TestWatchIgnoresNonTranscripts(t *testing.T) {
	projectsDir, st := setupIngestEnv(t)
	projectDir := filepath.Join(projectsDir, "-home-user-my-app")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(st, patterns.Default())
	w.Debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, projectsDir) }()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(projectDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, "CLAUDE.jsonl"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	count, err := st.CountSessions("")
	if err != nil {
		t.Fatalf("CountSessions: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no ingested sessions, got %d", count)
	}

	cancel()
	<-done
}
