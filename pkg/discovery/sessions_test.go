package discovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanSessionsIn(t *testing.T) {
	projectsDir := t.TempDir()

	writeFile(t, filepath.Join(projectsDir, "-home-dev-code-my-app", "aaaa-1111.jsonl"), "{}\n")
	writeFile(t, filepath.Join(projectsDir, "-home-dev-code-my-app", "bbbb-2222.jsonl"), "{}\n{}\n")
	writeFile(t, filepath.Join(projectsDir, "-home-dev-code-my-app", "CLAUDE.jsonl"), "{}\n")
	writeFile(t, filepath.Join(projectsDir, "-home-dev-code-my-app", "notes.txt"), "x")
	writeFile(t, filepath.Join(projectsDir, "other", "cccc-3333.jsonl"), "{}\n")

	sessions, err := ScanSessionsIn(projectsDir, ScanOptions{})
	if err != nil {
		t.Fatalf("ScanSessionsIn: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(sessions))
	}

	byID := map[string]bool{}
	for _, s := range sessions {
		byID[s.SessionID] = true
	}
	for _, want := range []string{"aaaa-1111", "bbbb-2222", "cccc-3333"} {
		if !byID[want] {
			t.Errorf("missing session %s", want)
		}
	}
}

func TestScanSessionsProjectFilter(t *testing.T) {
	projectsDir := t.TempDir()
	writeFile(t, filepath.Join(projectsDir, "-home-dev-code-my-app", "aaaa.jsonl"), "{}\n")
	writeFile(t, filepath.Join(projectsDir, "-home-dev-code-other-thing", "bbbb.jsonl"), "{}\n")

	sessions, err := ScanSessionsIn(projectsDir, ScanOptions{Project: "MY-APP"})
	if err != nil {
		t.Fatalf("ScanSessionsIn: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].Project != "my-app" {
		t.Errorf("project = %q, want %q", sessions[0].Project, "my-app")
	}
}

func TestScanSessionsCutoff(t *testing.T) {
	projectsDir := t.TempDir()
	oldPath := filepath.Join(projectsDir, "proj", "old.jsonl")
	newPath := filepath.Join(projectsDir, "proj", "new.jsonl")
	writeFile(t, oldPath, "{}\n")
	writeFile(t, newPath, "{}\n")

	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	sessions, err := ScanSessionsIn(projectsDir, ScanOptions{Cutoff: time.Now().Add(-time.Hour)})
	if err != nil {
		t.Fatalf("ScanSessionsIn: %v", err)
	}
	if len(sessions) != 1 || sessions[0].SessionID != "new" {
		t.Fatalf("expected only the new session, got %v", sessions)
	}
}

func TestScanSessionsMissingDir(t *testing.T) {
	sessions, err := ScanSessionsIn(filepath.Join(t.TempDir(), "nope"), ScanOptions{})
	if err != nil {
		t.Fatalf("ScanSessionsIn: %v", err)
	}
	if sessions != nil {
		t.Errorf("expected nil for missing dir, got %v", sessions)
	}
}

func TestScanSessionsSortedByModTime(t *testing.T) {
	projectsDir := t.TempDir()
	first := filepath.Join(projectsDir, "proj", "first.jsonl")
	second := filepath.Join(projectsDir, "proj", "second.jsonl")
	writeFile(t, first, "{}\n")
	writeFile(t, second, "{}\n")

	early := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(second, early, early); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	sessions, err := ScanSessionsIn(projectsDir, ScanOptions{})
	if err != nil {
		t.Fatalf("ScanSessionsIn: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].SessionID != "second" {
		t.Errorf("expected oldest first, got %s", sessions[0].SessionID)
	}
}

func TestStatSession(t *testing.T) {
	projectsDir := t.TempDir()
	path := filepath.Join(projectsDir, "-home-dev-code-my-app", "abc123.jsonl")
	writeFile(t, path, "{}\n")

	sf, err := StatSession(path)
	if err != nil {
		t.Fatalf("StatSession: %v", err)
	}
	if sf == nil {
		t.Fatal("expected a session file")
	}
	if sf.SessionID != "abc123" || sf.Project != "my-app" || sf.ProjectDir != "-home-dev-code-my-app" {
		t.Errorf("unexpected metadata: %+v", sf)
	}

	for _, name := range []string{"notes.txt", "CLAUDE.jsonl"} {
		p := filepath.Join(projectsDir, "-home-dev-code-my-app", name)
		writeFile(t, p, "x")
		sf, err := StatSession(p)
		if err != nil {
			t.Fatalf("StatSession(%s): %v", name, err)
		}
		if sf != nil {
			t.Errorf("%s should not be a session", name)
		}
	}

	if _, err := StatSession(filepath.Join(projectsDir, "missing", "x.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDecodeProjectName(t *testing.T) {
	tests := []struct {
		dirname string
		want    string
	}{
		{"-home-dev-code-my-app", "my-app"},
		{"-Users-dev-projects-backend", "projects-backend"},
		{"simple", "simple"},
		{"two-parts", "two-parts"},
		{"a-b-c", "a-b-c"},
		{"a-b-c-d", "c-d"},
	}

	for _, tt := range tests {
		t.Run(tt.dirname, func(t *testing.T) {
			if got := DecodeProjectName(tt.dirname); got != tt.want {
				t.Errorf("DecodeProjectName(%q) = %q, want %q", tt.dirname, got, tt.want)
			}
		})
	}
}
