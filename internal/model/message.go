package model

import "time"

// Message roles. The research engine only ever sees these two; the system
// instruction for AI calls is carried separately.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn. History is ordered oldest-first and
// is read-only from the research engine's point of view; the caller owns
// appending new turns after a query completes.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Session is a stored conversation.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
