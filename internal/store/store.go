// Package store persists conversation sessions and their turns. The research
// engine itself is stateless; the chat and serve surfaces use a Store to keep
// conversations across process restarts.
package store

import (
	"context"

	"github.com/sells-group/pe-research/internal/model"
)

// SessionFilter specifies criteria for listing sessions.
type SessionFilter struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store defines the persistence interface for conversations.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, title string) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]model.Session, error)
	DeleteSession(ctx context.Context, id string) error

	// Messages
	AppendMessage(ctx context.Context, sessionID string, msg model.Message) error
	ListMessages(ctx context.Context, sessionID string) ([]model.Message, error)
	// ClearMessages implements the "new chat" reset: history goes, the
	// session stays.
	ClearMessages(ctx context.Context, sessionID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
