// Package store is the SQLite persistence layer: one row per session, one
// row per message. The write path replaces a session and its messages as a
// single transaction keyed by the stable session id, so the store never
// mixes message rows from two versions of the same session.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sessionintel/session-intel/pkg/config"
	"github.com/sessionintel/session-intel/pkg/types"
)

// Store wraps the SQLite database connection.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens or creates the sessions database in the state directory.
func Open() (*Store, error) {
	dbPath, err := config.GetDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	return OpenAt(dbPath)
}

// OpenAt opens or creates the database at an explicit path.
func OpenAt(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{conn: conn, path: dbPath}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// initSchema creates tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		project TEXT NOT NULL,
		session_id TEXT NOT NULL,
		first_message TEXT,
		message_count INTEGER NOT NULL DEFAULT 0,
		user_message_count INTEGER NOT NULL DEFAULT 0,
		assistant_message_count INTEGER NOT NULL DEFAULT 0,
		tool_call_count INTEGER NOT NULL DEFAULT 0,
		error_count INTEGER NOT NULL DEFAULT 0,
		retry_count INTEGER NOT NULL DEFAULT 0,
		correction_count INTEGER NOT NULL DEFAULT 0,
		unique_tools TEXT,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		created_at TEXT,
		modified_at TEXT,
		duration_minutes REAL,
		raw_path TEXT,
		intent TEXT,
		domain TEXT,
		struggle_score REAL NOT NULL DEFAULT 0,
		ingested_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		timestamp TEXT,
		content_preview TEXT,
		tool_names TEXT,
		tool_call_count INTEGER NOT NULL DEFAULT 0,
		has_error INTEGER NOT NULL DEFAULT 0,
		is_retry INTEGER NOT NULL DEFAULT 0,
		is_correction INTEGER NOT NULL DEFAULT 0,
		is_discovery INTEGER NOT NULL DEFAULT 0,
		UNIQUE(session_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions(project);
	CREATE INDEX IF NOT EXISTS idx_sessions_struggle ON sessions(struggle_score);
	CREATE INDEX IF NOT EXISTS idx_sessions_raw_path ON sessions(raw_path);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);
	`

	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Existing returns raw_path → modified_at for every ingested session from
// one source. The ingestion driver compares against fresh file mtimes to
// skip unchanged artifacts.
func (s *Store) Existing(source string) (map[string]string, error) {
	rows, err := s.conn.Query(
		"SELECT raw_path, modified_at FROM sessions WHERE source = ?", source)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing sessions: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]string)
	for rows.Next() {
		var rawPath, modifiedAt sql.NullString
		if err := rows.Scan(&rawPath, &modifiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan existing session: %w", err)
		}
		if rawPath.Valid {
			existing[rawPath.String] = modifiedAt.String
		}
	}
	return existing, rows.Err()
}

// ReplaceSession writes a session and its messages in one transaction:
// upsert the session row, delete every prior message row for the id, insert
// the fresh set. Rolls back as a unit on any failure.
func (s *Store) ReplaceSession(sess *types.Session, messages []types.Message) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	uniqueTools, err := json.Marshal(sess.UniqueTools)
	if err != nil {
		return fmt.Errorf("failed to marshal unique tools: %w", err)
	}

	ingestedAt := time.Now().UTC().Format(time.RFC3339)

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO sessions
		(id, source, project, session_id, first_message, message_count,
		 user_message_count, assistant_message_count, tool_call_count,
		 error_count, retry_count, correction_count, unique_tools,
		 size_bytes, created_at, modified_at, duration_minutes, raw_path,
		 intent, domain, struggle_score, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sess.ID, sess.Source, sess.Project, sess.SessionID, sess.FirstMessage,
		sess.MessageCount, sess.UserMessageCount, sess.AssistantMessageCount,
		sess.ToolCallCount, sess.ErrorCount, sess.RetryCount,
		sess.CorrectionCount, string(uniqueTools), sess.SizeBytes,
		sess.CreatedAt, sess.ModifiedAt, sess.DurationMinutes, sess.RawPath,
		sess.Intent, sess.Domain, sess.StruggleScore, ingestedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", sess.ID, err)
	}

	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", sess.ID); err != nil {
		return fmt.Errorf("failed to clear messages for %s: %w", sess.ID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO messages
		(session_id, seq, role, timestamp, content_preview, tool_names,
		 tool_call_count, has_error, is_retry, is_correction, is_discovery)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	for _, msg := range messages {
		var toolNames interface{}
		if len(msg.ToolNames) > 0 {
			encoded, err := json.Marshal(msg.ToolNames)
			if err != nil {
				return fmt.Errorf("failed to marshal tool names: %w", err)
			}
			toolNames = string(encoded)
		}

		_, err = stmt.Exec(
			sess.ID, msg.Seq, msg.Role, msg.Timestamp, msg.ContentPreview,
			toolNames, msg.ToolCallCount,
			boolToInt(msg.HasError), boolToInt(msg.IsRetry),
			boolToInt(msg.IsCorrection), boolToInt(msg.IsDiscovery),
		)
		if err != nil {
			return fmt.Errorf("failed to insert message %d for %s: %w", msg.Seq, sess.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session %s: %w", sess.ID, err)
	}

	sess.IngestedAt = ingestedAt
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
