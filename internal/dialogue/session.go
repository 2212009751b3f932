// Package dialogue implements the multi-turn slot-filling conversation
// engine.
package dialogue

import (
	"sync"

	"github.com/google/uuid"
	"github.com/keeperhq/keeper/internal/model"
)

// Session is the per-conversation state: the append-only turn log and the
// single pending-action slot. All turn processing for one session runs
// under its mutex, so turns never interleave within a session while
// distinct sessions proceed independently.
type Session struct {
	id      string
	pending *model.PendingAction
	log     []model.ConversationTurn
	mu      sync.Mutex
}

// NewSession creates an empty session with a fresh identifier.
func NewSession() *Session {
	return &Session{id: uuid.NewString()}
}

// NewSessionWithID restores a session identity, e.g. when reloading a
// persisted conversation.
func NewSessionWithID(id string) *Session {
	return &Session{id: id}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Turns returns a copy of the conversation log in append order.
func (s *Session) Turns() []model.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ConversationTurn, len(s.log))
	copy(out, s.log)
	return out
}

// Pending returns a copy of the open pending action, or nil. The copy
// keeps callers from mutating collection state outside the session mutex.
func (s *Session) Pending() *model.PendingAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	return model.NewPendingAction(s.pending.Intent, s.pending.Params, s.pending.MissingFields)
}

// append stamps the next sequence number and adds the turn to the log.
// Callers hold s.mu.
func (s *Session) append(turn model.ConversationTurn) model.ConversationTurn {
	turn.Sequence = int64(len(s.log)) + 1
	s.log = append(s.log, turn)
	return turn
}
