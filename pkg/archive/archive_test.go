package archive

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/sessionintel/session-intel/pkg/store"
	"github.com/sessionintel/session-intel/pkg/types"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.OpenAt(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func putSession(t *testing.T, st *store.Store, sessionID, project, rawPath, modifiedAt string, messageCount int) {
	t.Helper()
	sess := &types.Session{
		ID:           types.SessionDBID(types.SourceClaudeCode, sessionID),
		Source:       types.SourceClaudeCode,
		Project:      project,
		SessionID:    sessionID,
		RawPath:      rawPath,
		ModifiedAt:   modifiedAt,
		MessageCount: messageCount,
	}
	if err := st.ReplaceSession(sess, nil); err != nil {
		t.Fatalf("ReplaceSession(%s): %v", sessionID, err)
	}
}

func writeRaw(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunArchivesAndSkipsUnchanged(t *testing.T) {
	st := openTestStore(t)
	rawDir := t.TempDir()
	raw := writeRaw(t, rawDir, "s1.jsonl", "{\"a\":1}\n{\"a\":2}\n{\"a\":3}\n")
	putSession(t, st, "session-one", "my-app", raw, "2026-01-15T10:00:00Z", 2)

	a := &Archiver{Store: st, Dir: t.TempDir()}
	summary, err := a.Run(Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Archived != 1 || summary.Unchanged != 0 {
		t.Fatalf("first run: %+v", summary)
	}

	dest := filepath.Join(a.Dir, "my-app", "session-one.jsonl.zst")
	info, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	want := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	if !info.ModTime().Equal(want) {
		t.Errorf("archive mtime = %v, want %v", info.ModTime(), want)
	}

	// Same recorded modification time means the snapshot is already current.
	summary, err = a.Run(Options{})
	if err != nil {
		t.Fatalf("Run again: %v", err)
	}
	if summary.Archived != 0 || summary.Unchanged != 1 {
		t.Fatalf("second run: %+v", summary)
	}

	// A re-ingest with a newer modification time re-archives.
	putSession(t, st, "session-one", "my-app", raw, "2026-01-16T10:00:00Z", 2)
	summary, err = a.Run(Options{})
	if err != nil {
		t.Fatalf("Run after update: %v", err)
	}
	if summary.Archived != 1 {
		t.Fatalf("third run: %+v", summary)
	}
}

func TestRunRoundTrip(t *testing.T) {
	st := openTestStore(t)
	content := "{\"seq\":0}\n{\"seq\":1}\n"
	raw := writeRaw(t, t.TempDir(), "s.jsonl", content)
	putSession(t, st, "round-trip", "my-app", raw, "2026-01-15T10:00:00Z", 2)

	a := &Archiver{Store: st, Dir: t.TempDir()}
	if _, err := a.Run(Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	f, err := os.Open(filepath.Join(a.Dir, "my-app", "round-trip.jsonl.zst"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	decompressed, err := io.ReadAll(dec)
	if err != nil {
		t.Fatal(err)
	}
	if string(decompressed) != content {
		t.Errorf("round trip mismatch: %q != %q", decompressed, content)
	}
}

func TestRunOlderThanFilter(t *testing.T) {
	st := openTestStore(t)
	rawDir := t.TempDir()
	oldRaw := writeRaw(t, rawDir, "old.jsonl", "{}\n")
	newRaw := writeRaw(t, rawDir, "new.jsonl", "{}\n")
	putSession(t, st, "old-session", "my-app", oldRaw, "2020-01-01T00:00:00Z", 1)
	putSession(t, st, "new-session", "my-app", newRaw,
		time.Now().UTC().Format(time.RFC3339), 1)

	a := &Archiver{Store: st, Dir: t.TempDir()}
	summary, err := a.Run(Options{OlderThan: 24 * time.Hour})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Archived != 1 {
		t.Fatalf("summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(a.Dir, "my-app", "old-session.jsonl.zst")); err != nil {
		t.Errorf("old session should be archived: %v", err)
	}
	if _, err := os.Stat(filepath.Join(a.Dir, "my-app", "new-session.jsonl.zst")); !os.IsNotExist(err) {
		t.Errorf("new session should not be archived yet")
	}
}

func TestRunMissingRaw(t *testing.T) {
	st := openTestStore(t)
	putSession(t, st, "gone", "my-app", "/nonexistent/gone.jsonl", "2026-01-15T10:00:00Z", 1)

	a := &Archiver{Store: st, Dir: t.TempDir()}
	summary, err := a.Run(Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Missing != 1 || summary.Archived != 0 {
		t.Fatalf("summary: %+v", summary)
	}
}

func TestVerify(t *testing.T) {
	st := openTestStore(t)
	raw := writeRaw(t, t.TempDir(), "s.jsonl", "{\"a\":1}\n{\"a\":2}\n{\"a\":3}\n")
	putSession(t, st, "verified", "my-app", raw, "2026-01-15T10:00:00Z", 2)
	putSession(t, st, "never-archived", "my-app", raw, "2026-01-15T10:00:00Z", 2)

	a := &Archiver{Store: st, Dir: t.TempDir()}
	if _, err := a.Run(Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Remove never-archived's snapshot so Verify skips it.
	os.Remove(filepath.Join(a.Dir, "my-app", "never-archived.jsonl.zst"))

	results, err := a.Verify("")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.SessionID != "verified" || r.Lines != 3 || r.MessageCount != 2 {
		t.Errorf("result: %+v", r)
	}
	if !r.OK() {
		t.Errorf("expected OK, got %+v", r)
	}
}

func TestSummaryString(t *testing.T) {
	s := Summary{Archived: 2, Unchanged: 3, Missing: 1}
	if got := s.String(); got != "Archived: 2 new, 3 unchanged, 1 missing" {
		t.Errorf("String() = %q", got)
	}
	s.Failed = 1
	if got := s.String(); got != "Archived: 2 new, 3 unchanged, 1 missing, 1 failed" {
		t.Errorf("String() = %q", got)
	}
}
