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

// CreateAccount stores a new financial account.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.FinancialAccount) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.createAccountTx(ctx, tx, account); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) createAccountTx(ctx context.Context, tx *sql.Tx, account *model.FinancialAccount) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (id, name, type, icon, balance, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		account.ID, account.Name, string(account.Type), account.Icon, account.Balance, account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccounts returns all financial accounts ordered by creation time.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.FinancialAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAccountsTx(ctx, nil)
}

func (s *SQLiteStorage) getAccountsTx(ctx context.Context, tx *sql.Tx) ([]model.FinancialAccount, error) {
	query := `SELECT id, name, type, icon, balance, created_at FROM accounts ORDER BY created_at`

	var rows *sql.Rows
	var err error
	if tx != nil {
		rows, err = tx.QueryContext(ctx, query)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.FinancialAccount
	for rows.Next() {
		var a model.FinancialAccount
		var accountType string
		var icon sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &accountType, &icon, &a.Balance, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Type = model.AccountType(accountType)
		a.Icon = icon.String
		accounts = append(accounts, a)
	}

	return accounts, rows.Err()
}

// GetAccountByID looks up a single account.
func (s *SQLiteStorage) GetAccountByID(ctx context.Context, id string) (*model.FinancialAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getAccountByIDTx(ctx, nil, id)
}

func (s *SQLiteStorage) getAccountByIDTx(ctx context.Context, tx *sql.Tx, id string) (*model.FinancialAccount, error) {
	query := `SELECT id, name, type, icon, balance, created_at FROM accounts WHERE id = ?`

	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, id)
	} else {
		row = s.db.QueryRowContext(ctx, query, id)
	}

	var a model.FinancialAccount
	var accountType string
	var icon sql.NullString
	err := row.Scan(&a.ID, &a.Name, &accountType, &icon, &a.Balance, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	a.Type = model.AccountType(accountType)
	a.Icon = icon.String
	return &a, nil
}

// UpdateAccountBalance sets an account's balance.
func (s *SQLiteStorage) UpdateAccountBalance(ctx context.Context, id string, balance float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.updateAccountBalanceTx(ctx, tx, id, balance); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) updateAccountBalanceTx(ctx context.Context, tx *sql.Tx, id string, balance float64) error {
	result, err := tx.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`, balance, id)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// TransferFunds moves amount between two accounts and records the transfer.
// The debit, credit and transfer record are one database transaction: if
// any leg fails, no account balance changes.
func (s *SQLiteStorage) TransferFunds(ctx context.Context, fromID, toID string, amount float64, description string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(fromID, "fromID"); err != nil {
		return nil, err
	}
	if err := validateString(toID, "toID"); err != nil {
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

	source, err := s.getAccountByIDTx(ctx, tx, fromID)
	if err != nil {
		return nil, err
	}
	dest, err := s.getAccountByIDTx(ctx, tx, toID)
	if err != nil {
		return nil, err
	}

	if source.Balance < amount {
		return nil, fmt.Errorf("%w: %s has %.2f, need %.2f",
			common.ErrInsufficientFunds, source.Name, source.Balance, amount)
	}

	if err := s.updateAccountBalanceTx(ctx, tx, fromID, source.Balance-amount); err != nil {
		return nil, err
	}
	if err := s.updateAccountBalanceTx(ctx, tx, toID, dest.Balance+amount); err != nil {
		return nil, err
	}

	record := &model.Transaction{
		ID:          uuid.NewString(),
		Date:        time.Now(),
		Description: description,
		AccountID:   fromID,
		ToAccountID: toID,
		Kind:        model.TransactionTransfer,
		Amount:      amount,
		CreatedAt:   time.Now(),
	}
	if err := s.createTransactionTx(ctx, tx, record); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	slog.Info("Transfer completed",
		"from", source.Name,
		"to", dest.Name,
		"amount", amount)

	return record, nil
}
