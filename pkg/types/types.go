package types

import "time"

// Source identifies where sessions come from. Only Claude Code logs are
// ingested today, but the id scheme keeps room for other recorders.
const SourceClaudeCode = "claude-code"

// SessionDBID builds the source-qualified session id used as the primary key.
func SessionDBID(source, sessionID string) string {
	return source + ":" + sessionID
}

// Message roles. Log lines with any other type field are not messages and
// are skipped during ingestion.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one user or assistant turn within a session.
// Messages are written once per ingest and replaced wholesale whenever their
// parent session is re-ingested; they are never mutated individually.
type Message struct {
	Seq            int
	Role           string // "user" | "assistant"
	Timestamp      string // source-provided, may be empty
	ContentPreview string // truncated to 300 chars
	ToolNames      []string
	ToolCallCount  int
	HasError       bool
	IsRetry        bool
	IsCorrection   bool
	IsDiscovery    bool
}

// Session is the aggregate record for one conversation.
// Invariants: MessageCount == UserMessageCount + AssistantMessageCount, and
// StruggleScore is recomputable from (Intent, ErrorCount, RetryCount,
// CorrectionCount) alone.
type Session struct {
	ID           string // source-qualified: "claude-code:<session_id>"
	Source       string
	Project      string
	SessionID    string
	FirstMessage string
	HasFirst     bool // whether FirstMessage was ever captured

	MessageCount          int
	UserMessageCount      int
	AssistantMessageCount int
	ToolCallCount         int
	ErrorCount            int
	RetryCount            int
	CorrectionCount       int

	UniqueTools []string // sorted

	SizeBytes       int64
	CreatedAt       string // ISO 8601
	ModifiedAt      string // ISO 8601, freshness key together with RawPath
	DurationMinutes float64
	RawPath         string

	Intent        string
	Domain        string
	StruggleScore float64

	IngestedAt string // set by the store at write time
}

// SessionSummary is the slim projection the extractors select on.
type SessionSummary struct {
	ID              string
	SessionID       string
	StruggleScore   float64
	Intent          string
	Domain          string
	CorrectionCount int
}

// SessionFile is a raw transcript discovered on disk, before ingestion.
type SessionFile struct {
	SessionID  string // filename stem (UUID)
	Path       string
	Project    string // decoded from the projects/ subdirectory name
	ProjectDir string // encoded subdirectory name as found on disk
	ModTime    time.Time
	SizeBytes  int64
}
