package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sessionintel/session-intel/pkg/types"
)

// LabelStat is one row of a per-intent or per-domain aggregate.
type LabelStat struct {
	Label       string
	Count       int
	AvgStruggle float64
}

// TopSession is one row of the top-struggle listing.
type TopSession struct {
	SessionID    string
	Intent       string
	Domain       string
	Score        float64
	FirstMessage string
}

// SessionMetrics is the per-session slice the enforcement layer compares
// before/after a skill's creation date.
type SessionMetrics struct {
	SessionID       string
	CreatedAt       string
	StruggleScore   float64
	Intent          string
	Domain          string
	ErrorCount      int
	RetryCount      int
	CorrectionCount int
	FirstMessage    string
	RawPath         string
}

// ArchiveEntry is the metadata the archive command needs per session.
type ArchiveEntry struct {
	SessionID    string
	Project      string
	RawPath      string
	ModifiedAt   string
	MessageCount int
}

// CountSessions returns the number of ingested sessions for a project
// ("" = all projects).
func (s *Store) CountSessions(project string) (int, error) {
	if project == "" {
		return s.countOne("SELECT COUNT(*) FROM sessions")
	}
	return s.countOne("SELECT COUNT(*) FROM sessions WHERE project = ?", project)
}

// CountMessages returns the total number of message rows.
func (s *Store) CountMessages() (int, error) {
	return s.countOne("SELECT COUNT(*) FROM messages")
}

// CountHighStruggle returns how many of a project's sessions score above
// the threshold.
func (s *Store) CountHighStruggle(project string, threshold float64) (int, error) {
	return s.countOne(
		"SELECT COUNT(*) FROM sessions WHERE project = ? AND struggle_score > ?",
		project, threshold)
}

// TotalSizeBytes sums the raw transcript sizes of a project's sessions.
func (s *Store) TotalSizeBytes(project string) (int64, error) {
	var total sql.NullInt64
	err := s.conn.QueryRow(
		"SELECT SUM(size_bytes) FROM sessions WHERE project = ?", project).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum transcript sizes: %w", err)
	}
	return total.Int64, nil
}

func (s *Store) countOne(query string, args ...interface{}) (int, error) {
	var n int
	if err := s.conn.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

// GroupByIntent aggregates a project's sessions per intent, worst average
// struggle first.
func (s *Store) GroupByIntent(project string) ([]LabelStat, error) {
	return s.groupBy("intent", project)
}

// GroupByDomain aggregates a project's sessions per domain, worst average
// struggle first.
func (s *Store) GroupByDomain(project string) ([]LabelStat, error) {
	return s.groupBy("domain", project)
}

func (s *Store) groupBy(column, project string) ([]LabelStat, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*), AVG(struggle_score)
		FROM sessions
		WHERE project = ? AND %s IS NOT NULL
		GROUP BY %s
		ORDER BY AVG(struggle_score) DESC
	`, column, column, column)

	rows, err := s.conn.Query(query, project)
	if err != nil {
		return nil, fmt.Errorf("failed to group by %s: %w", column, err)
	}
	defer rows.Close()

	var stats []LabelStat
	for rows.Next() {
		var st LabelStat
		if err := rows.Scan(&st.Label, &st.Count, &st.AvgStruggle); err != nil {
			return nil, fmt.Errorf("failed to scan %s stat: %w", column, err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// TopStruggleSessions returns a project's worst sessions by score.
func (s *Store) TopStruggleSessions(project string, limit int) ([]TopSession, error) {
	rows, err := s.conn.Query(`
		SELECT session_id, intent, domain, struggle_score, first_message
		FROM sessions
		WHERE project = ?
		ORDER BY struggle_score DESC
		LIMIT ?
	`, project, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top sessions: %w", err)
	}
	defer rows.Close()

	var top []TopSession
	for rows.Next() {
		var ts TopSession
		var intent, domain, first sql.NullString
		if err := rows.Scan(&ts.SessionID, &intent, &domain, &ts.Score, &first); err != nil {
			return nil, fmt.Errorf("failed to scan top session: %w", err)
		}
		ts.Intent = intent.String
		ts.Domain = domain.String
		ts.FirstMessage = first.String
		top = append(top, ts)
	}
	return top, rows.Err()
}

// SessionsByCreated returns a project's sessions ordered by created_at,
// optionally filtered to one domain. The enforcement layer splits the
// result around a skill's creation date.
func (s *Store) SessionsByCreated(project, domain string) ([]SessionMetrics, error) {
	query := `
		SELECT session_id, created_at, struggle_score, intent, domain,
		       error_count, retry_count, correction_count, first_message,
		       raw_path
		FROM sessions
		WHERE project = ?
	`
	args := []interface{}{project}
	if domain != "" {
		query += " AND domain = ?"
		args = append(args, domain)
	}
	query += " ORDER BY created_at"

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions by created_at: %w", err)
	}
	defer rows.Close()

	var sessions []SessionMetrics
	for rows.Next() {
		var sm SessionMetrics
		var created, intent, domain, first, rawPath sql.NullString
		if err := rows.Scan(&sm.SessionID, &created, &sm.StruggleScore,
			&intent, &domain, &sm.ErrorCount, &sm.RetryCount,
			&sm.CorrectionCount, &first, &rawPath); err != nil {
			return nil, fmt.Errorf("failed to scan session metrics: %w", err)
		}
		sm.CreatedAt = created.String
		sm.Intent = intent.String
		sm.Domain = domain.String
		sm.FirstMessage = first.String
		sm.RawPath = rawPath.String
		sessions = append(sessions, sm)
	}
	return sessions, rows.Err()
}

// ArchiveEntries returns raw artifact metadata for every ingested session,
// optionally filtered by project substring.
func (s *Store) ArchiveEntries(project string) ([]ArchiveEntry, error) {
	query := `
		SELECT session_id, project, raw_path, modified_at, message_count
		FROM sessions
		WHERE raw_path IS NOT NULL
	`
	args := []interface{}{}
	if project != "" {
		query += " AND project LIKE ?"
		args = append(args, "%"+project+"%")
	}
	query += " ORDER BY project, session_id"

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive entries: %w", err)
	}
	defer rows.Close()

	var entries []ArchiveEntry
	for rows.Next() {
		var ae ArchiveEntry
		var modified sql.NullString
		if err := rows.Scan(&ae.SessionID, &ae.Project, &ae.RawPath, &modified, &ae.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan archive entry: %w", err)
		}
		ae.ModifiedAt = modified.String
		entries = append(entries, ae)
	}
	return entries, rows.Err()
}

// SourceCounts returns session counts grouped by source.
func (s *Store) SourceCounts() (map[string]int, error) {
	rows, err := s.conn.Query("SELECT source, COUNT(*) FROM sessions GROUP BY source")
	if err != nil {
		return nil, fmt.Errorf("failed to count by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		counts[source] = n
	}
	return counts, rows.Err()
}

// NewestIngestedAt returns the most recent ingest timestamp, or "" for an
// empty store.
func (s *Store) NewestIngestedAt() (string, error) {
	var newest sql.NullString
	err := s.conn.QueryRow("SELECT MAX(ingested_at) FROM sessions").Scan(&newest)
	if err != nil {
		return "", fmt.Errorf("failed to query newest ingest: %w", err)
	}
	return newest.String, nil
}

// GetSession loads one full session row by its source-qualified id.
func (s *Store) GetSession(id string) (*types.Session, error) {
	row := s.conn.QueryRow(`
		SELECT id, source, project, session_id, first_message, message_count,
		       user_message_count, assistant_message_count, tool_call_count,
		       error_count, retry_count, correction_count, unique_tools,
		       size_bytes, created_at, modified_at, duration_minutes, raw_path,
		       intent, domain, struggle_score, ingested_at
		FROM sessions WHERE id = ?
	`, id)

	var sess types.Session
	var first, uniqueTools, created, modified, rawPath, intent, domain sql.NullString
	var duration sql.NullFloat64
	err := row.Scan(&sess.ID, &sess.Source, &sess.Project, &sess.SessionID,
		&first, &sess.MessageCount, &sess.UserMessageCount,
		&sess.AssistantMessageCount, &sess.ToolCallCount, &sess.ErrorCount,
		&sess.RetryCount, &sess.CorrectionCount, &uniqueTools,
		&sess.SizeBytes, &created, &modified, &duration, &rawPath,
		&intent, &domain, &sess.StruggleScore, &sess.IngestedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	sess.FirstMessage = first.String
	sess.HasFirst = first.String != ""
	sess.CreatedAt = created.String
	sess.ModifiedAt = modified.String
	sess.DurationMinutes = duration.Float64
	sess.RawPath = rawPath.String
	sess.Intent = intent.String
	sess.Domain = domain.String
	if uniqueTools.Valid && uniqueTools.String != "" {
		if err := json.Unmarshal([]byte(uniqueTools.String), &sess.UniqueTools); err != nil {
			return nil, fmt.Errorf("failed to decode unique tools for %s: %w", id, err)
		}
	}
	return &sess, nil
}

// Messages loads every message row for one session in sequence order.
func (s *Store) Messages(sessionDBID string) ([]types.Message, error) {
	rows, err := s.conn.Query(`
		SELECT seq, role, timestamp, content_preview, tool_names,
		       tool_call_count, has_error, is_retry, is_correction, is_discovery
		FROM messages
		WHERE session_id = ?
		ORDER BY seq
	`, sessionDBID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []types.Message
	for rows.Next() {
		var m types.Message
		var timestamp, preview, toolNames sql.NullString
		var hasError, isRetry, isCorrection, isDiscovery int
		if err := rows.Scan(&m.Seq, &m.Role, &timestamp, &preview, &toolNames,
			&m.ToolCallCount, &hasError, &isRetry, &isCorrection, &isDiscovery); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Timestamp = timestamp.String
		m.ContentPreview = preview.String
		if toolNames.Valid {
			m.ToolNames = decodeToolNames(toolNames.String)
		}
		m.HasError = hasError == 1
		m.IsRetry = isRetry == 1
		m.IsCorrection = isCorrection == 1
		m.IsDiscovery = isDiscovery == 1
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// decodeToolNames decodes the JSON tool_names column, tolerating rows
// written before the column was populated consistently.
func decodeToolNames(encoded string) []string {
	var names []string
	if err := json.Unmarshal([]byte(encoded), &names); err != nil {
		return nil
	}
	return names
}
