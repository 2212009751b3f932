package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/keeperhq/keeper/internal/model"
)

// SaveTurn appends a conversation turn. The sequence number is assigned
// under the single-writer SQLite connection, so the stored order is a
// stable total order even when callers complete out of submission order.
func (s *SQLiteStorage) SaveTurn(ctx context.Context, turn model.ConversationTurn) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(turn.ID, "turn.ID"); err != nil {
		return err
	}
	if err := validateString(turn.SessionID, "turn.SessionID"); err != nil {
		return err
	}

	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_turns (id, session_id, seq, role, text, created_at)
		 VALUES (?, ?, COALESCE((SELECT MAX(seq) FROM conversation_turns WHERE session_id = ?), 0) + 1, ?, ?, ?)`,
		turn.ID, turn.SessionID, turn.SessionID, string(turn.Role), turn.Text, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}
	return nil
}

// GetTurns returns a session's turns in sequence order. A limit of 0
// returns everything.
func (s *SQLiteStorage) GetTurns(ctx context.Context, sessionID string, limit int) ([]model.ConversationTurn, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(sessionID, "sessionID"); err != nil {
		return nil, err
	}

	query := `SELECT id, session_id, seq, role, text, created_at
		FROM conversation_turns WHERE session_id = ? ORDER BY seq`
	args := []any{sessionID}
	if limit > 0 {
		// Take the tail of the log, still ascending.
		query = `SELECT id, session_id, seq, role, text, created_at FROM (
			SELECT id, session_id, seq, role, text, created_at
			FROM conversation_turns WHERE session_id = ? ORDER BY seq DESC LIMIT ?
		) ORDER BY seq`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var turns []model.ConversationTurn
	for rows.Next() {
		var t model.ConversationTurn
		var role string
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Sequence, &role, &t.Text, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Role = model.TurnRole(role)
		turns = append(turns, t)
	}

	return turns, rows.Err()
}
