// Package extract runs four read-only windowing algorithms over the session
// store, clustering per-message evidence flags into human-readable signal
// blocks. Extractors never mutate the store and are safe to run while
// unrelated sessions are being ingested.
package extract

import (
	"fmt"
	"strings"

	"github.com/sessionintel/session-intel/pkg/patterns"
	"github.com/sessionintel/session-intel/pkg/store"
	"github.com/sessionintel/session-intel/pkg/types"
	"github.com/sessionintel/session-intel/pkg/utils"
)

const (
	// StruggleThreshold gates which sessions are worth extracting from.
	StruggleThreshold = 5

	// DefaultMinChain is the minimum retry-chain length worth reporting.
	DefaultMinChain = 3
	// DefaultMinRepeats is the minimum tool-run length worth reporting.
	DefaultMinRepeats = 3

	// sessionLimit caps how many sessions each strategy inspects.
	sessionLimit = 10
	// chainGap is the maximum seq distance between consecutive retries in
	// one chain.
	chainGap = 5
	// resolutionWindow is how far ahead of an error a discovery may sit to
	// count as its resolution.
	resolutionWindow = 10
)

// struggleIntents are the session intents where evidence flags indicate
// real difficulty rather than exploration.
var struggleIntents = []string{
	patterns.IntentExecution,
	patterns.IntentContinuation,
	patterns.IntentDebug,
}

// Extractor holds the store handle and tunable minimums.
type Extractor struct {
	store      *store.Store
	MinChain   int
	MinRepeats int
}

// New returns an extractor with default minimums.
func New(st *store.Store) *Extractor {
	return &Extractor{store: st, MinChain: DefaultMinChain, MinRepeats: DefaultMinRepeats}
}

// Strategy names, in the order "all" runs them.
var strategyNames = map[string]string{
	"a": "Strategy A: Retry Chains",
	"b": "Strategy B: Error→Resolution Pairs",
	"c": "Strategy C: User Corrections",
	"d": "Strategy D: Tool Repetition",
}

// Run executes one strategy ("a".."d") or all four with banner separators.
func (e *Extractor) Run(project, strategy string) (string, error) {
	switch strategy {
	case "a":
		return e.RetryChains(project)
	case "b":
		return e.ErrorResolutions(project)
	case "c":
		return e.Corrections(project)
	case "d":
		return e.ToolRepetitions(project)
	case "all":
		return e.runAll(project)
	}
	return "", fmt.Errorf("unknown strategy %q (want a, b, c, d, or all)", strategy)
}

func (e *Extractor) runAll(project string) (string, error) {
	banner := strings.Repeat("=", 80)
	var out strings.Builder
	for _, key := range []string{"a", "b", "c", "d"} {
		result, err := e.Run(project, key)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&out, "\n%s\n  %s\n%s\n\n%s\n", banner, strategyNames[key], banner, result)
	}
	return out.String(), nil
}

// sessionHeader renders the block header every strategy shares. The 12-char
// id prefix plus counts let a downstream reader trace evidence to source.
func sessionHeader(sum types.SessionSummary) string {
	return fmt.Sprintf("SESSION %s (score=%s, intent=%s, domain=%s)",
		utils.Truncate(sum.SessionID, 12), utils.FormatScore(sum.StruggleScore),
		sum.Intent, sum.Domain)
}

// RetryChains (strategy A) greedily groups a session's retry messages into
// chains: consecutive retries stay together while their seq gap is at most
// chainGap. Chains shorter than MinChain are noise and dropped.
func (e *Extractor) RetryChains(project string) (string, error) {
	sessions, err := e.store.HighStruggleSessions(project, StruggleThreshold, struggleIntents, sessionLimit)
	if err != nil {
		return "", err
	}

	var output []string
	for _, sum := range sessions {
		retries, err := e.store.RetryMessages(sum.ID)
		if err != nil {
			return "", err
		}
		if len(retries) < e.MinChain {
			continue
		}

		var chains [][]store.SeqPreview
		current := []store.SeqPreview{retries[0]}
		for i := 1; i < len(retries); i++ {
			if retries[i].Seq-retries[i-1].Seq <= chainGap {
				current = append(current, retries[i])
				continue
			}
			if len(current) >= e.MinChain {
				chains = append(chains, current)
			}
			current = []store.SeqPreview{retries[i]}
		}
		if len(current) >= e.MinChain {
			chains = append(chains, current)
		}

		for _, chain := range chains {
			var lines []string
			for _, r := range chain {
				lines = append(lines, fmt.Sprintf("  [msg %d] %s", r.Seq, r.Preview))
			}
			output = append(output, fmt.Sprintf("%s\nRetry chain (%d messages):\n%s\n",
				sessionHeader(sum), len(chain), strings.Join(lines, "\n")))
		}
	}

	if len(output) == 0 {
		return "(no retry chains found)", nil
	}
	return strings.Join(output, "\n"), nil
}

// ErrorResolutions (strategy B) pairs each error with the first discovery
// within resolutionWindow messages after it. A discovery is deliberately
// allowed to resolve multiple preceding errors; whether that is cumulative
// resolution or double-counting is undecidable from the data, so the
// behavior is kept as-is rather than silently fixed.
func (e *Extractor) ErrorResolutions(project string) (string, error) {
	sessions, err := e.store.HighStruggleSessions(project, StruggleThreshold, struggleIntents, sessionLimit)
	if err != nil {
		return "", err
	}

	var output []string
	for _, sum := range sessions {
		flagged, err := e.store.EvidenceMessages(sum.ID)
		if err != nil {
			return "", err
		}

		var errors, discoveries []store.EvidenceMessage
		for _, m := range flagged {
			if m.HasError {
				errors = append(errors, m)
			}
			if m.IsDiscovery {
				discoveries = append(discoveries, m)
			}
		}

		var pairs []string
		for _, errMsg := range errors {
			for _, disc := range discoveries {
				gap := disc.Seq - errMsg.Seq
				if gap > 0 && gap <= resolutionWindow {
					pairs = append(pairs, fmt.Sprintf(
						"  ERROR [msg %d]: %s\n  RESOLUTION [msg %d]: %s",
						errMsg.Seq, utils.Truncate(errMsg.Preview, 150),
						disc.Seq, utils.Truncate(disc.Preview, 150)))
					break
				}
			}
		}

		if len(pairs) > 0 {
			output = append(output, fmt.Sprintf("%s\n%s\n",
				sessionHeader(sum), strings.Join(pairs, "\n")))
		}
	}

	if len(output) == 0 {
		return "(no error→resolution pairs found)", nil
	}
	return strings.Join(output, "\n"), nil
}

// Corrections (strategy C) reports every user correction as a triplet: what
// the assistant said, what the user corrected, how the assistant responded.
// Sessions are ranked by correction count, not struggle score.
func (e *Extractor) Corrections(project string) (string, error) {
	sessions, err := e.store.CorrectionSessions(project, sessionLimit)
	if err != nil {
		return "", err
	}

	var output []string
	for _, sum := range sessions {
		contexts, err := e.store.CorrectionContexts(sum.ID)
		if err != nil {
			return "", err
		}
		if len(contexts) == 0 {
			continue
		}

		var triplets []string
		for _, cc := range contexts {
			prev := cc.Prev
			if !cc.HasPrev {
				prev = "(none)"
			}
			next := cc.Next
			if !cc.HasNext {
				next = "(none)"
			}
			triplets = append(triplets, fmt.Sprintf(
				"  CLAUDE SAID [msg %d]: %s\n  USER CORRECTED [msg %d]: %s\n  CLAUDE RESPONDED [msg %d]: %s",
				cc.Seq-1, utils.Truncate(prev, 150),
				cc.Seq, utils.Truncate(cc.Preview, 150),
				cc.Seq+1, utils.Truncate(next, 150)))
		}
		output = append(output, fmt.Sprintf("%s\n%s\n",
			sessionHeader(sum), strings.Join(triplets, "\n")))
	}

	if len(output) == 0 {
		return "(no corrections found)", nil
	}
	return strings.Join(output, "\n"), nil
}

// ToolRepetitions (strategy D) finds runs of messages repeatedly leading
// with the same tool. Messages whose tool list is empty are stepped over
// without breaking the run; a different leading tool ends it.
func (e *Extractor) ToolRepetitions(project string) (string, error) {
	sessions, err := e.store.HighStruggleSessions(project, StruggleThreshold, struggleIntents, sessionLimit)
	if err != nil {
		return "", err
	}

	var output []string
	for _, sum := range sessions {
		messages, err := e.store.ToolMessages(sum.ID)
		if err != nil {
			return "", err
		}

		var runs []string
		i := 0
		for i < len(messages) {
			if len(messages[i].ToolNames) == 0 {
				i++
				continue
			}
			anchor := messages[i].ToolNames[0]
			chain := []store.ToolMessage{messages[i]}

			j := i + 1
			for j < len(messages) {
				next := messages[j].ToolNames
				if len(next) > 0 && next[0] == anchor {
					chain = append(chain, messages[j])
					j++
				} else if len(next) == 0 {
					j++
				} else {
					break
				}
			}

			if len(chain) >= e.MinRepeats {
				var lines []string
				for _, m := range chain {
					lines = append(lines, fmt.Sprintf("  [msg %d] %s",
						m.Seq, utils.Truncate(m.Preview, 120)))
				}
				runs = append(runs, fmt.Sprintf("  Tool '%s' repeated %d times:\n%s",
					anchor, len(chain), strings.Join(lines, "\n")))
			}

			if j > i+1 {
				i = j
			} else {
				i++
			}
		}

		if len(runs) > 0 {
			output = append(output, sessionHeader(sum)+"\n"+strings.Join(runs, "\n")+"\n")
		}
	}

	if len(output) == 0 {
		return "(no tool repetitions found)", nil
	}
	return strings.Join(output, "\n"), nil
}
