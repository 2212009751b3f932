// Package storage provides the data persistence layer for the keeper application.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/keeperhq/keeper/internal/model"
	"github.com/keeperhq/keeper/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods delegate to the main storage with the transaction.
func (t *sqliteTransaction) CreateAccount(ctx context.Context, account *model.FinancialAccount) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}
	return t.storage.createAccountTx(ctx, t.tx, account)
}

func (t *sqliteTransaction) GetAccounts(ctx context.Context) ([]model.FinancialAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getAccountsTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetAccountByID(ctx context.Context, id string) (*model.FinancialAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getAccountByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) UpdateAccountBalance(ctx context.Context, id string, balance float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return t.storage.updateAccountBalanceTx(ctx, t.tx, id, balance)
}

func (t *sqliteTransaction) TransferFunds(_ context.Context, _, _ string, _ float64, _ string) (*model.Transaction, error) {
	// TransferFunds manages its own transaction boundary
	return nil, fmt.Errorf("transfers cannot be nested inside a transaction")
}

func (t *sqliteTransaction) CreateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}
	return t.storage.createGoalTx(ctx, t.tx, goal)
}

func (t *sqliteTransaction) GetGoals(ctx context.Context) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getGoalsTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetGoalByID(ctx context.Context, id string) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getGoalByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) AddGoalContribution(_ context.Context, _, _ string, _ float64) (*model.Goal, error) {
	// Contributions manage their own transaction boundary
	return nil, fmt.Errorf("contributions cannot be nested inside a transaction")
}

func (t *sqliteTransaction) CreateTask(ctx context.Context, task *model.Task) error {
	return t.storage.CreateTask(ctx, task)
}

func (t *sqliteTransaction) CreateNote(ctx context.Context, note *model.Note) error {
	return t.storage.CreateNote(ctx, note)
}

func (t *sqliteTransaction) CreateJournalEntry(ctx context.Context, entry *model.JournalEntry) error {
	return t.storage.CreateJournalEntry(ctx, entry)
}

func (t *sqliteTransaction) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return t.storage.createTransactionTx(ctx, t.tx, txn)
}

func (t *sqliteTransaction) CreateRecurringTransaction(ctx context.Context, rec *model.RecurringTransaction) error {
	return t.storage.CreateRecurringTransaction(ctx, rec)
}

func (t *sqliteTransaction) CreateBudget(ctx context.Context, budget *model.Budget) error {
	return t.storage.CreateBudget(ctx, budget)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, category *model.Category) error {
	return t.storage.CreateCategory(ctx, category)
}

func (t *sqliteTransaction) CreateLiability(ctx context.Context, liability *model.Liability) error {
	return t.storage.CreateLiability(ctx, liability)
}

func (t *sqliteTransaction) CreateCredential(ctx context.Context, credential *model.Credential) error {
	return t.storage.CreateCredential(ctx, credential)
}

func (t *sqliteTransaction) SaveTurn(ctx context.Context, turn model.ConversationTurn) error {
	return t.storage.SaveTurn(ctx, turn)
}

func (t *sqliteTransaction) GetTurns(ctx context.Context, sessionID string, limit int) ([]model.ConversationTurn, error) {
	return t.storage.GetTurns(ctx, sessionID, limit)
}

func (t *sqliteTransaction) IndexDocument(ctx context.Context, doc model.Document, embedding []float32) error {
	return t.storage.IndexDocument(ctx, doc, embedding)
}

func (t *sqliteTransaction) SearchSimilar(ctx context.Context, embedding []float32, opts service.SearchOptions) ([]model.RetrievedDocument, error) {
	return t.storage.SearchSimilar(ctx, embedding, opts)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}

// nullableTime converts a *time.Time into a driver-friendly value.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// scanNullableTime converts a sql.NullTime back into a *time.Time.
func scanNullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
