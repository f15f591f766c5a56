package classify

import (
	"strings"

	"github.com/sessionintel/session-intel/pkg/patterns"
)

// DetectIntent classifies a session from its first user message.
// Known boilerplate openers (warmup phrases, slash-command prefixes) are
// matched literally before any pattern scoring so that auto-generated
// sessions land in startup/continuation instead of polluting the real
// intent buckets.
func DetectIntent(firstMessage string, lib *patterns.Library) string {
	if firstMessage == "" {
		return patterns.IntentUnknown
	}

	text := strings.ToLower(strings.TrimSpace(firstMessage))

	switch text {
	case "warmup", "say hello", "tui", "think high":
		return patterns.IntentStartup
	}
	switch {
	case strings.HasPrefix(text, "# soul"):
		return patterns.IntentStartup
	case strings.HasPrefix(text, "<command-name>/clear"):
		return patterns.IntentContinuation
	case strings.HasPrefix(text, "<command-message>resume"):
		return patterns.IntentExecution
	case strings.HasPrefix(text, "<command-message>tickets"):
		return patterns.IntentReview
	case strings.HasPrefix(text, "<command-message>plugin"):
		return patterns.IntentConfig
	}
	if strings.Contains(text, "read the latest session") ||
		strings.Contains(text, "read the latest_session") {
		return patterns.IntentStartup
	}

	best := patterns.IntentUnknown
	bestScore := 0
	for _, lp := range lib.Intents {
		if score := patterns.PresenceScore(text, lp.Patterns); score > bestScore {
			best = lp.Label
			bestScore = score
		}
	}
	return best
}

// StruggleScore weights the evidence counters by intent. What counts as
// floundering depends on what the session was for: a planning session full
// of "let me check" is exploring, an execution session doing the same is
// stuck. Startup sessions always score zero.
func StruggleScore(intent string, errorCount, retryCount, correctionCount int) float64 {
	e := float64(errorCount)
	r := float64(retryCount)
	c := float64(correctionCount)

	switch intent {
	case patterns.IntentExecution, patterns.IntentContinuation:
		return e*2 + r*2 + c*3
	case patterns.IntentPlanning:
		return c*3 + r*0.25
	case patterns.IntentDebug:
		return r + c*3
	case patterns.IntentConfig:
		return r*2 + e
	case patterns.IntentResearch:
		return c * 3
	case patterns.IntentReview:
		return c*2 + r*0.5
	case patterns.IntentStartup:
		return 0
	default:
		return e + r + c*2
	}
}
