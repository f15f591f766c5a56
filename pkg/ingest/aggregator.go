// Package ingest turns raw session transcripts into classified session and
// message records and drives them into the store. The aggregator streams one
// file's line-delimited JSON events through the message classifier and
// derives intent, domain, and struggle score once the stream ends.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sessionintel/session-intel/pkg/classify"
	"github.com/sessionintel/session-intel/pkg/patterns"
	"github.com/sessionintel/session-intel/pkg/types"
	"github.com/sessionintel/session-intel/pkg/utils"
)

// previewLimit bounds stored message previews and the first-message capture.
const previewLimit = 300

// localCommandCaveat marks injected local-command output; it never counts as
// the session's first real user message.
const localCommandCaveat = "<local-command-caveat>"

// Transcript lines can carry whole file contents inside tool results.
const maxLineBytes = 10 * 1024 * 1024

// rawEvent is one transcript line. Only type, timestamp, and the message
// content are interesting; everything else on the line is ignored.
type rawEvent struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Message   struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

// ProcessSession reads one transcript and produces its session record and
// per-message rows. Blank lines, unparseable lines, and non-message event
// types are skipped; a file-level read error fails the whole session so a
// partial session is never persisted.
func ProcessSession(file types.SessionFile, lib *patterns.Library) (*types.Session, []types.Message, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	sess := &types.Session{
		ID:         types.SessionDBID(types.SourceClaudeCode, file.SessionID),
		Source:     types.SourceClaudeCode,
		Project:    file.Project,
		SessionID:  file.SessionID,
		SizeBytes:  file.SizeBytes,
		ModifiedAt: FormatModTime(file.ModTime),
		RawPath:    file.Path,
	}

	var messages []types.Message
	uniqueTools := make(map[string]bool)
	var firstEventTime, lastEventTime time.Time

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	seq := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var event rawEvent
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		if event.Type != types.RoleUser && event.Type != types.RoleAssistant {
			continue
		}

		text := classify.TextContent(event.Message.Content)

		var toolNames []string
		if event.Type == types.RoleAssistant {
			toolNames = classify.ToolNames(event.Message.Content)
		}

		flags := classify.Evaluate(event.Type, text, lib)

		if event.Type == types.RoleUser && !sess.HasFirst {
			if !strings.HasPrefix(text, localCommandCaveat) {
				sess.FirstMessage = utils.Truncate(text, previewLimit)
				sess.HasFirst = true
			}
		}

		sess.MessageCount++
		if event.Type == types.RoleUser {
			sess.UserMessageCount++
		} else {
			sess.AssistantMessageCount++
		}
		sess.ToolCallCount += len(toolNames)
		if flags.HasError {
			sess.ErrorCount++
		}
		if flags.IsRetry {
			sess.RetryCount++
		}
		if flags.IsCorrection {
			sess.CorrectionCount++
		}
		for _, name := range toolNames {
			uniqueTools[name] = true
		}

		if ts, ok := parseEventTime(event.Timestamp); ok {
			if firstEventTime.IsZero() {
				firstEventTime = ts
			}
			lastEventTime = ts
		}

		messages = append(messages, types.Message{
			Seq:            seq,
			Role:           event.Type,
			Timestamp:      event.Timestamp,
			ContentPreview: utils.Truncate(text, previewLimit),
			ToolNames:      toolNames,
			ToolCallCount:  len(toolNames),
			HasError:       flags.HasError,
			IsRetry:        flags.IsRetry,
			IsCorrection:   flags.IsCorrection,
			IsDiscovery:    flags.IsDiscovery,
		})
		seq++
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	sess.UniqueTools = sortedKeys(uniqueTools)

	// File birth time is platform-specific, so session start comes from the
	// first event timestamp instead, with the file mtime as fallback.
	if !firstEventTime.IsZero() {
		sess.CreatedAt = firstEventTime.UTC().Format(time.RFC3339)
		if lastEventTime.After(firstEventTime) {
			minutes := lastEventTime.Sub(firstEventTime).Minutes()
			sess.DurationMinutes = math.Round(minutes*10) / 10
		}
	} else {
		sess.CreatedAt = FormatModTime(file.ModTime)
	}

	var previews []string
	for _, m := range messages {
		previews = append(previews, m.ContentPreview)
	}
	sess.Intent = classify.DetectIntent(sess.FirstMessage, lib)
	sess.Domain = classify.DetectDomain(previews, lib)
	sess.StruggleScore = classify.StruggleScore(sess.Intent,
		sess.ErrorCount, sess.RetryCount, sess.CorrectionCount)

	return sess, messages, nil
}

// FormatModTime renders an artifact mtime as the stored freshness key.
// Re-formatting the same mtime must reproduce the stored string exactly.
func FormatModTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseEventTime(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// sortedKeys returns the set as a sorted slice so re-ingesting identical
// input produces byte-identical rows.
func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
