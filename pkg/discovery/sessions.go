// Package discovery finds raw session transcripts on disk. Claude Code
// writes one directory per project under ~/.claude/projects, each holding
// newline-delimited JSON transcripts named <sessionID>.jsonl.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sessionintel/session-intel/pkg/config"
	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/types"
)

// ScanOptions narrows a scan. Zero value scans everything.
type ScanOptions struct {
	// Cutoff skips files last modified before this time (zero = no cutoff).
	Cutoff time.Time
	// Project keeps only projects whose decoded name contains this
	// substring, case-insensitive ("" = all projects).
	Project string
}

// ScanSessions walks the projects directory and returns every session
// transcript matching opts, sorted by modification time (oldest first) so
// ingestion order is stable. A missing projects directory yields an empty
// result, not an error.
func ScanSessions(opts ScanOptions) ([]types.SessionFile, error) {
	projectsDir, err := config.GetProjectsDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get projects directory: %w", err)
	}
	return ScanSessionsIn(projectsDir, opts)
}

// ScanSessionsIn is ScanSessions against an explicit projects directory.
func ScanSessionsIn(projectsDir string, opts ScanOptions) ([]types.SessionFile, error) {
	if _, err := os.Stat(projectsDir); os.IsNotExist(err) {
		return nil, nil
	}

	filter := strings.ToLower(opts.Project)

	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read projects directory: %w", err)
	}

	var sessions []types.SessionFile
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		projectDir := entry.Name()
		project := DecodeProjectName(projectDir)
		if filter != "" && !strings.Contains(strings.ToLower(project), filter) {
			continue
		}

		dirPath := filepath.Join(projectsDir, projectDir)
		files, err := os.ReadDir(dirPath)
		if err != nil {
			logger.Warn("Failed to read project directory %s: %v", dirPath, err)
			continue
		}

		for _, f := range files {
			sf := parseSessionFile(dirPath, project, projectDir, f)
			if sf == nil {
				continue
			}
			if !opts.Cutoff.IsZero() && sf.ModTime.Before(opts.Cutoff) {
				continue
			}
			sessions = append(sessions, *sf)
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ModTime.Before(sessions[j].ModTime)
	})

	return sessions, nil
}

// StatSession builds the metadata for a single transcript path whose parent
// directory is an encoded project directory. The watch command uses this to
// re-ingest one file without a full scan. Returns nil for paths that are not
// session transcripts.
func StatSession(path string) (*types.SessionFile, error) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".jsonl") || strings.HasPrefix(name, "CLAUDE") {
		return nil, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat session file: %w", err)
	}
	if info.IsDir() {
		return nil, nil
	}

	projectDir := filepath.Base(filepath.Dir(path))
	return &types.SessionFile{
		SessionID:  strings.TrimSuffix(name, ".jsonl"),
		Path:       path,
		Project:    DecodeProjectName(projectDir),
		ProjectDir: projectDir,
		ModTime:    info.ModTime(),
		SizeBytes:  info.Size(),
	}, nil
}

// parseSessionFile checks whether a directory entry is a session transcript
// and returns its metadata. CLAUDE-prefixed files (memory files that happen
// to live alongside transcripts) are not sessions.
func parseSessionFile(dirPath, project, projectDir string, entry os.DirEntry) *types.SessionFile {
	if entry.IsDir() {
		return nil
	}

	name := entry.Name()
	if !strings.HasSuffix(name, ".jsonl") {
		return nil
	}
	if strings.HasPrefix(name, "CLAUDE") {
		return nil
	}

	info, err := entry.Info()
	if err != nil {
		return nil
	}

	return &types.SessionFile{
		SessionID:  strings.TrimSuffix(name, ".jsonl"),
		Path:       filepath.Join(dirPath, name),
		Project:    project,
		ProjectDir: projectDir,
		ModTime:    info.ModTime(),
		SizeBytes:  info.Size(),
	}
}
