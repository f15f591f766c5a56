package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/sessionintel/session-intel/pkg/types"
)

// SeqPreview is one message's sequence number and preview text.
type SeqPreview struct {
	Seq     int
	Preview string
}

// EvidenceMessage is a flagged message row selected by the error/resolution
// extractor.
type EvidenceMessage struct {
	Seq         int
	Preview     string
	HasError    bool
	IsDiscovery bool
}

// CorrectionContext is one user correction with the immediately preceding
// and following message previews. Prev/Next are empty at session boundaries.
type CorrectionContext struct {
	Seq     int
	Preview string
	Prev    string
	Next    string
	HasPrev bool
	HasNext bool
}

// ToolMessage is a message row carrying at least one tool invocation.
type ToolMessage struct {
	Seq       int
	ToolNames []string
	Preview   string
}

// HighStruggleSessions returns sessions for a project above the struggle
// threshold whose intent is in the given set, ranked by score descending.
func (s *Store) HighStruggleSessions(project string, threshold float64, intents []string, limit int) ([]types.SessionSummary, error) {
	placeholders := strings.Repeat("?,", len(intents))
	placeholders = strings.TrimSuffix(placeholders, ",")

	query := fmt.Sprintf(`
		SELECT id, session_id, struggle_score, intent, domain, correction_count
		FROM sessions
		WHERE project = ? AND struggle_score > ?
		  AND intent IN (%s)
		ORDER BY struggle_score DESC
		LIMIT ?
	`, placeholders)

	args := make([]interface{}, 0, len(intents)+3)
	args = append(args, project, threshold)
	for _, intent := range intents {
		args = append(args, intent)
	}
	args = append(args, limit)

	return s.querySummaries(query, args...)
}

// CorrectionSessions returns sessions for a project with at least one user
// correction, ranked by correction count descending.
func (s *Store) CorrectionSessions(project string, limit int) ([]types.SessionSummary, error) {
	return s.querySummaries(`
		SELECT id, session_id, struggle_score, intent, domain, correction_count
		FROM sessions
		WHERE project = ? AND correction_count > 0
		ORDER BY correction_count DESC
		LIMIT ?
	`, project, limit)
}

func (s *Store) querySummaries(query string, args ...interface{}) ([]types.SessionSummary, error) {
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var summaries []types.SessionSummary
	for rows.Next() {
		var sum types.SessionSummary
		var intent, domain sql.NullString
		if err := rows.Scan(&sum.ID, &sum.SessionID, &sum.StruggleScore,
			&intent, &domain, &sum.CorrectionCount); err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}
		sum.Intent = intent.String
		sum.Domain = domain.String
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// RetryMessages returns a session's retry-flagged assistant messages in
// sequence order.
func (s *Store) RetryMessages(sessionDBID string) ([]SeqPreview, error) {
	rows, err := s.conn.Query(`
		SELECT seq, content_preview
		FROM messages
		WHERE session_id = ? AND is_retry = 1 AND role = 'assistant'
		ORDER BY seq
	`, sessionDBID)
	if err != nil {
		return nil, fmt.Errorf("failed to query retry messages: %w", err)
	}
	defer rows.Close()

	var out []SeqPreview
	for rows.Next() {
		var sp SeqPreview
		var preview sql.NullString
		if err := rows.Scan(&sp.Seq, &preview); err != nil {
			return nil, fmt.Errorf("failed to scan retry message: %w", err)
		}
		sp.Preview = preview.String
		out = append(out, sp)
	}
	return out, rows.Err()
}

// EvidenceMessages returns a session's error- and discovery-flagged
// messages in sequence order.
func (s *Store) EvidenceMessages(sessionDBID string) ([]EvidenceMessage, error) {
	rows, err := s.conn.Query(`
		SELECT seq, content_preview, has_error, is_discovery
		FROM messages
		WHERE session_id = ? AND (has_error = 1 OR is_discovery = 1)
		ORDER BY seq
	`, sessionDBID)
	if err != nil {
		return nil, fmt.Errorf("failed to query evidence messages: %w", err)
	}
	defer rows.Close()

	var out []EvidenceMessage
	for rows.Next() {
		var em EvidenceMessage
		var preview sql.NullString
		var hasError, isDiscovery int
		if err := rows.Scan(&em.Seq, &preview, &hasError, &isDiscovery); err != nil {
			return nil, fmt.Errorf("failed to scan evidence message: %w", err)
		}
		em.Preview = preview.String
		em.HasError = hasError == 1
		em.IsDiscovery = isDiscovery == 1
		out = append(out, em)
	}
	return out, rows.Err()
}

// CorrectionContexts returns each correction message with its neighbors via
// a three-way self-join on seq-1/seq+1. Neighbors are NULL at boundaries.
func (s *Store) CorrectionContexts(sessionDBID string) ([]CorrectionContext, error) {
	rows, err := s.conn.Query(`
		SELECT m.seq, m.content_preview,
		       prev.content_preview AS prev_msg,
		       next_msg.content_preview AS next_msg
		FROM messages m
		LEFT JOIN messages prev
		  ON prev.session_id = m.session_id AND prev.seq = m.seq - 1
		LEFT JOIN messages next_msg
		  ON next_msg.session_id = m.session_id AND next_msg.seq = m.seq + 1
		WHERE m.session_id = ? AND m.is_correction = 1
		ORDER BY m.seq
	`, sessionDBID)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer rows.Close()

	var out []CorrectionContext
	for rows.Next() {
		var cc CorrectionContext
		var preview, prev, next sql.NullString
		if err := rows.Scan(&cc.Seq, &preview, &prev, &next); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		cc.Preview = preview.String
		cc.Prev, cc.HasPrev = prev.String, prev.Valid
		cc.Next, cc.HasNext = next.String, next.Valid
		out = append(out, cc)
	}
	return out, rows.Err()
}

// ToolMessages returns a session's messages with at least one tool call in
// sequence order, tool name lists decoded from their JSON column.
func (s *Store) ToolMessages(sessionDBID string) ([]ToolMessage, error) {
	rows, err := s.conn.Query(`
		SELECT seq, tool_names, content_preview
		FROM messages
		WHERE session_id = ? AND tool_call_count > 0
		ORDER BY seq
	`, sessionDBID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tool messages: %w", err)
	}
	defer rows.Close()

	var out []ToolMessage
	for rows.Next() {
		var tm ToolMessage
		var toolNames, preview sql.NullString
		if err := rows.Scan(&tm.Seq, &toolNames, &preview); err != nil {
			return nil, fmt.Errorf("failed to scan tool message: %w", err)
		}
		tm.Preview = preview.String
		if toolNames.Valid {
			tm.ToolNames = decodeToolNames(toolNames.String)
		}
		out = append(out, tm)
	}
	return out, rows.Err()
}
