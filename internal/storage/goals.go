package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/keeperhq/keeper/internal/common"
	"github.com/keeperhq/keeper/internal/model"
)

// CreateGoal stores a new savings goal.
func (s *SQLiteStorage) CreateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.createGoalTx(ctx, tx, goal); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) createGoalTx(ctx context.Context, tx *sql.Tx, goal *model.Goal) error {
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO goals (id, name, icon, target_amount, current_amount, target_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.Name, goal.Icon, goal.TargetAmount, goal.CurrentAmount,
		nullableTime(goal.TargetDate), goal.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// GetGoals returns all goals ordered by creation time.
func (s *SQLiteStorage) GetGoals(ctx context.Context) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getGoalsTx(ctx, nil)
}

func (s *SQLiteStorage) getGoalsTx(ctx context.Context, tx *sql.Tx) ([]model.Goal, error) {
	query := `SELECT id, name, icon, target_amount, current_amount, target_date, created_at
		FROM goals ORDER BY created_at`

	var rows *sql.Rows
	var err error
	if tx != nil {
		rows, err = tx.QueryContext(ctx, query)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []model.Goal
	for rows.Next() {
		var g model.Goal
		var icon sql.NullString
		var targetDate sql.NullTime
		if err := rows.Scan(&g.ID, &g.Name, &icon, &g.TargetAmount, &g.CurrentAmount, &targetDate, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		g.Icon = icon.String
		g.TargetDate = scanNullableTime(targetDate)
		goals = append(goals, g)
	}

	return goals, rows.Err()
}

// GetGoalByID looks up a single goal.
func (s *SQLiteStorage) GetGoalByID(ctx context.Context, id string) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getGoalByIDTx(ctx, nil, id)
}

func (s *SQLiteStorage) getGoalByIDTx(ctx context.Context, tx *sql.Tx, id string) (*model.Goal, error) {
	query := `SELECT id, name, icon, target_amount, current_amount, target_date, created_at
		FROM goals WHERE id = ?`

	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, id)
	} else {
		row = s.db.QueryRowContext(ctx, query, id)
	}

	var g model.Goal
	var icon sql.NullString
	var targetDate sql.NullTime
	err := row.Scan(&g.ID, &g.Name, &icon, &g.TargetAmount, &g.CurrentAmount, &targetDate, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("goal %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	g.Icon = icon.String
	g.TargetDate = scanNullableTime(targetDate)
	return &g, nil
}

// AddGoalContribution increments a goal's current amount, optionally
// debiting a source account, and records the contribution. All writes
// share one database transaction.
func (s *SQLiteStorage) AddGoalContribution(ctx context.Context, goalID, accountID string, amount float64) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(goalID, "goalID"); err != nil {
		return nil, err
	}
	if err := validateAmount(amount, "amount"); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	goal, err := s.getGoalByIDTx(ctx, tx, goalID)
	if err != nil {
		return nil, err
	}

	if accountID != "" {
		account, err := s.getAccountByIDTx(ctx, tx, accountID)
		if err != nil {
			return nil, err
		}
		if account.Balance < amount {
			return nil, fmt.Errorf("%w: %s has %.2f, need %.2f",
				common.ErrInsufficientFunds, account.Name, account.Balance, amount)
		}
		if err := s.updateAccountBalanceTx(ctx, tx, accountID, account.Balance-amount); err != nil {
			return nil, err
		}
	}

	newAmount := goal.CurrentAmount + amount
	if _, err := tx.ExecContext(ctx,
		`UPDATE goals SET current_amount = ? WHERE id = ?`, newAmount, goalID); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	var contribAccount any
	if accountID != "" {
		contribAccount = accountID
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO goal_contributions (id, goal_id, account_id, amount, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), goalID, contribAccount, amount, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to record contribution: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit contribution: %w", err)
	}

	goal.CurrentAmount = newAmount

	slog.Info("Goal contribution recorded",
		"goal", goal.Name,
		"amount", amount,
		"progress", fmt.Sprintf("%.1f%%", goal.Progress()))

	return goal, nil
}
