// Package model defines the core data types shared across the application.
package model

import (
	"time"

	"github.com/google/uuid"
)

// TurnRole identifies who produced a conversation turn.
type TurnRole string

const (
	// RoleUser marks a turn typed by the user.
	RoleUser TurnRole = "user"
	// RoleAssistant marks a turn generated by the engine.
	RoleAssistant TurnRole = "assistant"
	// RoleConfirmation marks a system confirmation after a completed action.
	RoleConfirmation TurnRole = "confirmation"
)

// ConversationTurn is a single entry in the append-only conversation log.
// Turns are never mutated after creation.
type ConversationTurn struct {
	CreatedAt time.Time
	ID        string
	SessionID string
	Role      TurnRole
	Text      string
	Sequence  int64
}

// NewTurn creates a turn with a fresh identifier.
func NewTurn(sessionID string, role TurnRole, text string) ConversationTurn {
	return ConversationTurn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}
