package classify

import (
	"strings"

	"github.com/sessionintel/session-intel/pkg/patterns"
)

// DetectDomain classifies a session's subject matter from every message
// preview in the session, not just the opener. Scoring is occurrence-based:
// a session that mentions queries thirty times is a data session even if it
// opens with small talk. Ties break by domain enumeration order; all-zero
// scores fall back to "general".
func DetectDomain(previews []string, lib *patterns.Library) string {
	scores := make([]int, len(lib.Domains))
	for _, preview := range previews {
		text := strings.ToLower(preview)
		if text == "" {
			continue
		}
		for i, lp := range lib.Domains {
			scores[i] += patterns.OccurrenceScore(text, lp.Patterns)
		}
	}

	best := patterns.DomainGeneral
	bestScore := 0
	for i, lp := range lib.Domains {
		if scores[i] > bestScore {
			best = lp.Label
			bestScore = scores[i]
		}
	}
	return best
}
