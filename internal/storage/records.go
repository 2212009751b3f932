package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/keeperhq/keeper/internal/model"
)

// CreateTask stores a new task.
func (s *SQLiteStorage) CreateTask(ctx context.Context, task *model.Task) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("%w: task", ErrNilParameter)
	}
	if err := validateString(task.ID, "task.ID"); err != nil {
		return err
	}
	if err := validateString(task.Title, "task.Title"); err != nil {
		return err
	}

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, notes, due_date, done, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Notes, nullableTime(task.DueDate), task.Done, task.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// CreateNote stores a new note.
func (s *SQLiteStorage) CreateNote(ctx context.Context, note *model.Note) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if note == nil {
		return fmt.Errorf("%w: note", ErrNilParameter)
	}
	if err := validateString(note.ID, "note.ID"); err != nil {
		return err
	}
	if err := validateString(note.Content, "note.Content"); err != nil {
		return err
	}

	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (id, title, content, created_at) VALUES (?, ?, ?, ?)`,
		note.ID, note.Title, note.Content, note.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// CreateJournalEntry stores a new journal entry.
func (s *SQLiteStorage) CreateJournalEntry(ctx context.Context, entry *model.JournalEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if err := validateString(entry.ID, "entry.ID"); err != nil {
		return err
	}
	if err := validateString(entry.Content, "entry.Content"); err != nil {
		return err
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.EntryDate.IsZero() {
		entry.EntryDate = entry.CreatedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_entries (id, entry_date, content, mood, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.EntryDate, entry.Content, entry.Mood, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}
	return nil
}

// CreateTransaction stores a single ledger entry.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.createTransactionTx(ctx, tx, txn); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) createTransactionTx(ctx context.Context, tx *sql.Tx, txn *model.Transaction) error {
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	if txn.Date.IsZero() {
		txn.Date = txn.CreatedAt
	}
	var toAccount any
	if txn.ToAccountID != "" {
		toAccount = txn.ToAccountID
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, date, description, category, account_id, to_account_id, kind, amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.Date, txn.Description, txn.Category, txn.AccountID, toAccount,
		string(txn.Kind), txn.Amount, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionsByAccount returns ledger entries referencing an account,
// as source or destination, newest first.
func (s *SQLiteStorage) GetTransactionsByAccount(ctx context.Context, accountID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, description, category, account_id, to_account_id, kind, amount, created_at
		 FROM transactions WHERE account_id = ? OR to_account_id = ? ORDER BY date DESC`,
		accountID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var category, account, toAccount sql.NullString
		var kind string
		if err := rows.Scan(&t.ID, &t.Date, &t.Description, &category, &account, &toAccount, &kind, &t.Amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Category = category.String
		t.AccountID = account.String
		t.ToAccountID = toAccount.String
		t.Kind = model.TransactionKind(kind)
		txns = append(txns, t)
	}

	return txns, rows.Err()
}

// CreateRecurringTransaction stores a recurring schedule.
func (s *SQLiteStorage) CreateRecurringTransaction(ctx context.Context, rec *model.RecurringTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%w: recurring transaction", ErrNilParameter)
	}
	if err := validateString(rec.ID, "rec.ID"); err != nil {
		return err
	}
	if err := validateString(rec.Description, "rec.Description"); err != nil {
		return err
	}
	if err := validateAmount(rec.Amount, "rec.Amount"); err != nil {
		return err
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.NextRun.IsZero() {
		rec.NextRun = rec.CreatedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recurring_transactions (id, description, category, account_id, frequency, kind, amount, next_run, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Description, rec.Category, rec.AccountID, rec.Frequency,
		string(rec.Kind), rec.Amount, rec.NextRun, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create recurring transaction: %w", err)
	}
	return nil
}

// CreateBudget stores a spending budget.
func (s *SQLiteStorage) CreateBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if err := validateString(budget.ID, "budget.ID"); err != nil {
		return err
	}
	if err := validateString(budget.Category, "budget.Category"); err != nil {
		return err
	}
	if err := validateAmount(budget.Limit, "budget.Limit"); err != nil {
		return err
	}

	if budget.CreatedAt.IsZero() {
		budget.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, category, period, spending_limit, created_at) VALUES (?, ?, ?, ?, ?)`,
		budget.ID, budget.Category, budget.Period, budget.Limit, budget.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

// CreateCategory stores a transaction category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := validateString(category.ID, "category.ID"); err != nil {
		return err
	}
	if err := validateString(category.Name, "category.Name"); err != nil {
		return err
	}

	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, type, created_at) VALUES (?, ?, ?, ?)`,
		category.ID, category.Name, string(category.Type), category.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// CreateLiability stores a liability.
func (s *SQLiteStorage) CreateLiability(ctx context.Context, liability *model.Liability) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if liability == nil {
		return fmt.Errorf("%w: liability", ErrNilParameter)
	}
	if err := validateString(liability.ID, "liability.ID"); err != nil {
		return err
	}
	if err := validateString(liability.Name, "liability.Name"); err != nil {
		return err
	}
	if err := validateAmount(liability.Amount, "liability.Amount"); err != nil {
		return err
	}

	if liability.CreatedAt.IsZero() {
		liability.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO liabilities (id, name, type, icon, amount, due_date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		liability.ID, liability.Name, string(liability.Type), liability.Icon,
		liability.Amount, nullableTime(liability.DueDate), liability.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create liability: %w", err)
	}
	return nil
}

// CreateCredential stores a platform credential.
func (s *SQLiteStorage) CreateCredential(ctx context.Context, credential *model.Credential) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if credential == nil {
		return fmt.Errorf("%w: credential", ErrNilParameter)
	}
	if err := validateString(credential.ID, "credential.ID"); err != nil {
		return err
	}
	if err := validateString(credential.Platform, "credential.Platform"); err != nil {
		return err
	}
	if err := validateString(credential.Password, "credential.Password"); err != nil {
		return err
	}

	if credential.CreatedAt.IsZero() {
		credential.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials (id, platform, title, email, password, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		credential.ID, credential.Platform, credential.Title, credential.Email,
		credential.Password, credential.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}
