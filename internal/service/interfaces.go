// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/keeperhq/keeper/internal/model"
)

// DateRange represents a time period with inclusive start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// SearchOptions configures a similarity search.
type SearchOptions struct {
	DateRange *DateRange
	Threshold float64
	Limit     int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Financial account operations
	CreateAccount(ctx context.Context, account *model.FinancialAccount) error
	GetAccounts(ctx context.Context) ([]model.FinancialAccount, error)
	GetAccountByID(ctx context.Context, id string) (*model.FinancialAccount, error)
	UpdateAccountBalance(ctx context.Context, id string, balance float64) error
	// TransferFunds debits the source, credits the destination and records
	// the transfer inside a single database transaction. It fails without
	// partial mutation when either account is missing or the source balance
	// is below amount.
	TransferFunds(ctx context.Context, fromID, toID string, amount float64, description string) (*model.Transaction, error)

	// Goal operations
	CreateGoal(ctx context.Context, goal *model.Goal) error
	GetGoals(ctx context.Context) ([]model.Goal, error)
	GetGoalByID(ctx context.Context, id string) (*model.Goal, error)
	// AddGoalContribution increments the goal and, when accountID is
	// non-empty, debits the source account atomically with the increment.
	AddGoalContribution(ctx context.Context, goalID, accountID string, amount float64) (*model.Goal, error)

	// Record creation
	CreateTask(ctx context.Context, task *model.Task) error
	CreateNote(ctx context.Context, note *model.Note) error
	CreateJournalEntry(ctx context.Context, entry *model.JournalEntry) error
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	CreateRecurringTransaction(ctx context.Context, rec *model.RecurringTransaction) error
	CreateBudget(ctx context.Context, budget *model.Budget) error
	CreateCategory(ctx context.Context, category *model.Category) error
	CreateLiability(ctx context.Context, liability *model.Liability) error
	CreateCredential(ctx context.Context, credential *model.Credential) error

	// Conversation log
	SaveTurn(ctx context.Context, turn model.ConversationTurn) error
	GetTurns(ctx context.Context, sessionID string, limit int) ([]model.ConversationTurn, error)

	// Semantic index
	IndexDocument(ctx context.Context, doc model.Document, embedding []float32) error
	SearchSimilar(ctx context.Context, embedding []float32, opts SearchOptions) ([]model.RetrievedDocument, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// Classification is the upstream classifier's reading of a free-text turn.
type Classification struct {
	Params        map[string]string
	Intent        string
	Confirmation  string
	OriginalQuery string
}

// Classifier maps free text to an intent and extracted parameters.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Classification, error)
}

// Embedder generates a vector embedding for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GenerationChunk is one streamed piece of a generated answer. Err is
// non-nil only on the terminating chunk of a failed stream.
type GenerationChunk struct {
	Err  error
	Text string
}

// Generator streams a grounded natural-language answer for a prompt. The
// returned channel is closed when the stream completes or the context is
// canceled.
type Generator interface {
	Generate(ctx context.Context, prompt string) (<-chan GenerationChunk, error)
}

// Notifier delivers fire-and-forget success/error toasts. Not part of
// control flow.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}
