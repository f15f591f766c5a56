// Package archive snapshots raw session transcripts into the state
// directory, so the evidence survives Claude Code pruning its own logs.
package archive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/store"
)

// Options control which sessions get archived.
type Options struct {
	Project   string        // substring filter, "" = all
	OlderThan time.Duration // only archive sessions last modified before now-OlderThan
}

// Summary counts what one archive run did.
type Summary struct {
	Archived  int
	Unchanged int
	Missing   int
	Failed    int
}

func (s Summary) String() string {
	out := fmt.Sprintf("Archived: %d new, %d unchanged, %d missing", s.Archived, s.Unchanged, s.Missing)
	if s.Failed > 0 {
		out += fmt.Sprintf(", %d failed", s.Failed)
	}
	return out
}

// Archiver compresses raw JSONL transcripts into Dir, one file per session.
type Archiver struct {
	Store *store.Store
	Dir   string
}

// Run archives every matching session's raw transcript to
// {Dir}/{project}/{sessionID}.jsonl.zst. The archive file's mtime is set to
// the session's recorded modification time; a matching mtime on an existing
// archive means the snapshot is current and the session is skipped.
func (a *Archiver) Run(opts Options) (*Summary, error) {
	entries, err := a.Store.ArchiveEntries(opts.Project)
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if opts.OlderThan > 0 {
		cutoff = time.Now().Add(-opts.OlderThan)
	}

	summary := &Summary{}
	for _, entry := range entries {
		modified, err := time.Parse(time.RFC3339, entry.ModifiedAt)
		if err != nil {
			logger.Warn("archive: session %s has unparseable modified_at %q", entry.SessionID, entry.ModifiedAt)
			summary.Failed++
			continue
		}
		if !cutoff.IsZero() && modified.After(cutoff) {
			continue
		}

		dest := a.archivePath(entry)
		if info, err := os.Stat(dest); err == nil && info.ModTime().Equal(modified) {
			summary.Unchanged++
			continue
		}

		if _, err := os.Stat(entry.RawPath); os.IsNotExist(err) {
			summary.Missing++
			continue
		}

		if err := compressFile(entry.RawPath, dest, modified); err != nil {
			logger.Warn("archive: failed to archive %s: %v", entry.SessionID, err)
			summary.Failed++
			continue
		}
		logger.Debug("archived %s to %s", entry.SessionID, dest)
		summary.Archived++
	}
	return summary, nil
}

func (a *Archiver) archivePath(entry store.ArchiveEntry) string {
	return filepath.Join(a.Dir, entry.Project, entry.SessionID+".jsonl.zst")
}

// compressFile writes src compressed to dest via a temp file in the same
// directory, then renames it into place and stamps it with modTime.
func compressFile(src, dest string, modTime time.Time) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create archive dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".archive-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		tmp.Close()
		return fmt.Errorf("failed to compress: %w", err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to finish compression: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	if err := os.Chtimes(dest, modTime, modTime); err != nil {
		return fmt.Errorf("failed to stamp archive time: %w", err)
	}
	return nil
}

// VerifyResult reports one archive checked against the session store.
type VerifyResult struct {
	SessionID    string
	Project      string
	Lines        int
	MessageCount int
	Err          error
}

// OK reports whether the archive decompressed cleanly and holds at least as
// many lines as the session has stored messages. Raw transcripts carry
// non-message lines too, so more lines than messages is normal.
func (v VerifyResult) OK() bool {
	return v.Err == nil && v.Lines >= v.MessageCount
}

// Verify decompresses every matching archive and compares its line count to
// the stored message count.
func (a *Archiver) Verify(project string) ([]VerifyResult, error) {
	entries, err := a.Store.ArchiveEntries(project)
	if err != nil {
		return nil, err
	}

	var results []VerifyResult
	for _, entry := range entries {
		dest := a.archivePath(entry)
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			continue // never archived
		}
		res := VerifyResult{
			SessionID:    entry.SessionID,
			Project:      entry.Project,
			MessageCount: entry.MessageCount,
		}
		res.Lines, res.Err = countArchivedLines(dest)
		results = append(results, res)
	}
	return results, nil
}

func countArchivedLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	lines := 0
	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) > 0 {
			lines++
		}
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("failed to read archive: %w", err)
	}
	return lines, nil
}
