package ingest

import (
	"fmt"
	"time"

	"github.com/sessionintel/session-intel/pkg/discovery"
	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/patterns"
	"github.com/sessionintel/session-intel/pkg/store"
	"github.com/sessionintel/session-intel/pkg/types"
)

// Options narrows an ingestion run.
type Options struct {
	// Hours limits the run to artifacts modified in the last N hours
	// (0 = everything).
	Hours int
	// Project is a case-insensitive project-name substring filter.
	Project string
	// Force re-ingests artifacts even when their mtime is unchanged.
	Force bool
}

// Summary reports what an ingestion run did.
type Summary struct {
	New       int
	Updated   int
	Unchanged int
	Failed    int

	TotalSessions int
	TotalMessages int
}

// String renders the user-facing ingest summary.
func (s *Summary) String() string {
	line := fmt.Sprintf("Ingested: %d new, %d updated, %d unchanged",
		s.New, s.Updated, s.Unchanged)
	if s.Failed > 0 {
		line += fmt.Sprintf(", %d failed", s.Failed)
	}
	return line + fmt.Sprintf("\nTotal: %d sessions, %d messages",
		s.TotalSessions, s.TotalMessages)
}

// Run discovers session transcripts, decides which need (re)processing by
// comparing stored against current mtimes, and drives each through the
// aggregator into the store. A failure on one session logs a diagnostic and
// moves on; only discovery or store-wide failures abort the run.
func Run(st *store.Store, lib *patterns.Library, opts Options) (*Summary, error) {
	scanOpts := discovery.ScanOptions{Project: opts.Project}
	if opts.Hours > 0 {
		scanOpts.Cutoff = time.Now().Add(-time.Duration(opts.Hours) * time.Hour)
	}

	files, err := discovery.ScanSessions(scanOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to discover sessions: %w", err)
	}

	existing := map[string]string{}
	if !opts.Force {
		existing, err = st.Existing(types.SourceClaudeCode)
		if err != nil {
			return nil, fmt.Errorf("failed to load ingested sessions: %w", err)
		}
	}

	summary := &Summary{}
	for _, file := range files {
		stored, known := existing[file.Path]
		if known && stored == FormatModTime(file.ModTime) {
			summary.Unchanged++
			continue
		}

		if err := IngestFile(st, lib, file); err != nil {
			logger.Warn("Skipping session %s: %v", file.SessionID, err)
			summary.Failed++
			continue
		}

		if known {
			summary.Updated++
		} else {
			summary.New++
		}
	}

	if summary.TotalSessions, err = st.CountSessions(""); err != nil {
		return nil, err
	}
	if summary.TotalMessages, err = st.CountMessages(); err != nil {
		return nil, err
	}
	return summary, nil
}

// IngestFile processes one transcript and replaces its rows in the store.
// The watch command uses this directly for single-file refreshes.
func IngestFile(st *store.Store, lib *patterns.Library, file types.SessionFile) error {
	sess, messages, err := ProcessSession(file, lib)
	if err != nil {
		return err
	}
	if err := st.ReplaceSession(sess, messages); err != nil {
		return err
	}
	logger.Debug("Ingested %s: %d messages, intent=%s, score=%v",
		sess.ID, sess.MessageCount, sess.Intent, sess.StruggleScore)
	return nil
}
