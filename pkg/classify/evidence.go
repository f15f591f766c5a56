// Package classify turns raw message content into evidence flags and derives
// per-session intent, domain, and struggle score from the pattern library.
// Everything here is a pure function of its inputs; no session history, no
// side effects.
package classify

import (
	"github.com/sessionintel/session-intel/pkg/patterns"
	"github.com/sessionintel/session-intel/pkg/types"
)

// Flags is the per-message evidence classification. Error/retry/discovery
// apply to assistant turns, correction to user turns; the three assistant
// flags are computed independently and may overlap.
type Flags struct {
	HasError     bool
	IsRetry      bool
	IsCorrection bool
	IsDiscovery  bool
}

// Evaluate classifies one message's text against the evidence pattern groups.
func Evaluate(role, text string, lib *patterns.Library) Flags {
	var f Flags
	switch role {
	case types.RoleAssistant:
		f.HasError = patterns.MatchesAny(text, lib.Error)
		f.IsRetry = patterns.MatchesAny(text, lib.Retry)
		f.IsDiscovery = patterns.MatchesAny(text, lib.Discovery)
	case types.RoleUser:
		f.IsCorrection = patterns.MatchesAny(text, lib.Correction)
	}
	return f
}
