package model

import "time"

// Task is a to-do item.
type Task struct {
	CreatedAt time.Time
	DueDate   *time.Time
	ID        string
	Title     string
	Notes     string
	Done      bool
}

// Note is a free-form note.
type Note struct {
	CreatedAt time.Time
	ID        string
	Title     string
	Content   string
}

// JournalEntry is a dated journal record.
type JournalEntry struct {
	CreatedAt time.Time
	EntryDate time.Time
	ID        string
	Content   string
	Mood      string
}

// TransactionKind distinguishes ledger entry directions.
type TransactionKind string

const (
	TransactionExpense  TransactionKind = "expense"
	TransactionIncome   TransactionKind = "income"
	TransactionTransfer TransactionKind = "transfer"
)

// Transaction is a single ledger entry. Transfers reference both the
// debited and credited accounts.
type Transaction struct {
	Date          time.Time
	CreatedAt     time.Time
	ID            string
	Description   string
	Category      string
	AccountID     string
	ToAccountID   string
	Kind          TransactionKind
	Amount        float64
}

// RecurringTransaction is a schedule that generates ledger entries.
type RecurringTransaction struct {
	CreatedAt   time.Time
	NextRun     time.Time
	ID          string
	Description string
	Category    string
	AccountID   string
	Frequency   string
	Kind        TransactionKind
	Amount      float64
}

// Budget caps spending for a category over a period.
type Budget struct {
	CreatedAt time.Time
	ID        string
	Category  string
	Period    string
	Limit     float64
}

// CategoryType indicates whether a category tracks income or expenses.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category is a valid transaction category.
type Category struct {
	CreatedAt time.Time
	ID        string
	Name      string
	Type      CategoryType
}

// Credential is a stored login for an external platform. Secret material
// never passes through the intent classifier; see the dialogue package.
type Credential struct {
	CreatedAt time.Time
	ID        string
	Platform  string
	Title     string
	Email     string
	Password  string
}

// GoalContribution records one contribution toward a goal, optionally
// debited from a source account.
type GoalContribution struct {
	CreatedAt time.Time
	ID        string
	GoalID    string
	AccountID string
	Amount    float64
}
