// Package chat implements multi-turn chat sessions and the engine that
// orchestrates hybrid retrieval, answer synthesis and session persistence for
// each turn.
package chat

import (
	"context"
	"time"
	"unicode/utf8"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// titleMaxRunes bounds the session title derived from the first user query.
const titleMaxRunes = 25

// Message is one entry in a session's history.  Timestamp is Unix seconds
// with fractional precision.
type Message struct {
	Role      string  `json:"role"`
	Content   string  `json:"content"`
	Timestamp float64 `json:"timestamp"`
}

// Summary is the listing view of a session.
type Summary struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats reports aggregate session-store figures.
type Stats struct {
	ActiveSessions int64 `json:"active_sessions"`
}

// Detail reports per-session statistics.
type Detail struct {
	SessionID       string    `json:"session_id"`
	Title           string    `json:"title"`
	MessageCount    int       `json:"message_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	DurationSeconds float64   `json:"duration_seconds"`
}

// Store persists per-session message history with TTL expiry.  Two
// implementations exist: the Redis store for production and an in-memory
// store selected by configuration for development and tests.
//
// SaveMessage upserts by session id: the first write creates the session,
// derives its title from the user query and initializes the history with the
// pair; later writes append the pair and refresh updated_at and the TTL.  The
// title is never re-derived after the first write.  The pair append must be
// atomic with respect to concurrent turns on the same session, so histories
// always hold an even number of messages.
type Store interface {
	SaveMessage(ctx context.Context, sessionID, userQuery, aiAnswer string) error

	// ListSessions returns live session summaries ordered by updated_at
	// descending, capped at limit.
	ListSessions(ctx context.Context, limit int) ([]Summary, error)

	// GetHistory returns the full ordered message list, or an empty slice if
	// the session does not exist or has expired.
	GetHistory(ctx context.Context, sessionID string) ([]Message, error)

	// DeleteSession removes the session, reporting whether anything was
	// deleted.
	DeleteSession(ctx context.Context, sessionID string) (bool, error)

	// RenameSession replaces the session title.  The session must exist.
	RenameSession(ctx context.Context, sessionID, title string) error

	// SessionStats reports aggregate figures over live sessions.
	SessionStats(ctx context.Context) (Stats, error)

	// DescribeSession reports per-session statistics.  The session must
	// exist.
	DescribeSession(ctx context.Context, sessionID string) (Detail, error)
}

// DeriveTitle derives a session title from the first user query: the query
// verbatim if at most 25 characters, otherwise truncated to 25 characters
// with an ellipsis marker.
func DeriveTitle(firstQuery string) string {
	if utf8.RuneCountInString(firstQuery) <= titleMaxRunes {
		return firstQuery
	}
	runes := []rune(firstQuery)
	return string(runes[:titleMaxRunes]) + "..."
}
