// Package analyze is the orchestration layer over the extraction pipeline:
// project statistics, language-model classification of extracted signals,
// skill recommendations, and the saved markdown report.
package analyze

import (
	"fmt"

	"github.com/sessionintel/session-intel/pkg/extract"
	"github.com/sessionintel/session-intel/pkg/store"
)

// ProjectStats summarizes one project's ingested sessions.
type ProjectStats struct {
	Project       string
	TotalSessions int
	HighStruggle  int
	TotalBytes    int64
	ByIntent      []store.LabelStat
	ByDomain      []store.LabelStat
	TopStruggle   []store.TopSession
}

// topStruggleLimit caps the worst-sessions listing.
const topStruggleLimit = 10

// LoadProjectStats gathers the aggregate views the stats command and the
// analysis report both render.
func LoadProjectStats(st *store.Store, project string) (*ProjectStats, error) {
	stats := &ProjectStats{Project: project}

	var err error
	if stats.TotalSessions, err = st.CountSessions(project); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	if stats.HighStruggle, err = st.CountHighStruggle(project, extract.StruggleThreshold); err != nil {
		return nil, fmt.Errorf("failed to count high-struggle sessions: %w", err)
	}
	if stats.TotalBytes, err = st.TotalSizeBytes(project); err != nil {
		return nil, err
	}
	if stats.ByIntent, err = st.GroupByIntent(project); err != nil {
		return nil, err
	}
	if stats.ByDomain, err = st.GroupByDomain(project); err != nil {
		return nil, err
	}
	if stats.TopStruggle, err = st.TopStruggleSessions(project, topStruggleLimit); err != nil {
		return nil, err
	}
	return stats, nil
}
