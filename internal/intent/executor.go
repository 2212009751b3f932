package intent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/keeperhq/keeper/internal/common"
	"github.com/keeperhq/keeper/internal/model"
	"github.com/keeperhq/keeper/internal/resolve"
	"github.com/keeperhq/keeper/internal/service"
)

// Status reports whether an execution ran or needs more parameters.
type Status string

const (
	// StatusComplete means the action executed and Confirmation is set.
	StatusComplete Status = "complete"
	// StatusIncomplete means MissingFields must be collected first.
	StatusIncomplete Status = "incomplete"
)

// Result is the outcome of an execution attempt.
type Result struct {
	Status        Status
	Confirmation  string
	Prompt        string
	MissingFields []string
}

// Executor validates intent parameters and performs the corresponding
// domain mutations.
type Executor struct {
	store    service.Storage
	resolver resolve.Strategy
	embedder service.Embedder
	notifier service.Notifier
}

// Option configures optional executor collaborators.
type Option func(*Executor)

// WithEmbedder enables semantic indexing of created tasks, notes and
// journal entries.
func WithEmbedder(embedder service.Embedder) Option {
	return func(e *Executor) { e.embedder = embedder }
}

// WithNotifier routes success/error toasts to a notification sink.
func WithNotifier(notifier service.Notifier) Option {
	return func(e *Executor) { e.notifier = notifier }
}

// NewExecutor creates an executor backed by storage and a name resolver.
func NewExecutor(store service.Storage, resolver resolve.Strategy, opts ...Option) *Executor {
	e := &Executor{
		store:    store,
		resolver: resolver,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute validates params for the intent and performs its mutation. When
// required fields are missing (or a financial amount fails to parse) it
// returns an incomplete result naming the fields still needed; the caller
// owns turning that into a pending action.
func (e *Executor) Execute(ctx context.Context, tag Tag, params map[string]string) (*Result, error) {
	if !tag.Valid() {
		return nil, fmt.Errorf("unknown intent %q", tag)
	}

	if missing := MissingFields(tag, params); len(missing) > 0 {
		return &Result{
			Status:        StatusIncomplete,
			MissingFields: missing,
			Prompt:        PromptFor(tag, missing[0]),
		}, nil
	}

	confirmation, err := e.run(ctx, tag, params)
	if err != nil {
		var incomplete *reaskError
		if errors.As(err, &incomplete) {
			return &Result{
				Status:        StatusIncomplete,
				MissingFields: []string{incomplete.field},
				Prompt:        incomplete.prompt,
			}, nil
		}
		if e.notifier != nil {
			e.notifier.Error(common.UserMessage(err, "Sorry, that didn't work."))
		}
		return nil, err
	}

	if e.notifier != nil {
		e.notifier.Success(confirmation)
	}
	return &Result{
		Status:       StatusComplete,
		Confirmation: confirmation,
	}, nil
}

// run dispatches to the intent's handler. The switch is exhaustive over
// the closed tag set; search and chat intents never reach the executor.
func (e *Executor) run(ctx context.Context, tag Tag, params map[string]string) (string, error) {
	switch tag {
	case CreateTask:
		return e.createTask(ctx, params)
	case CreateNote:
		return e.createNote(ctx, params)
	case CreateJournal:
		return e.createJournal(ctx, params)
	case CreateTransaction:
		return e.createTransaction(ctx, params)
	case CreateRecurring:
		return e.createRecurring(ctx, params)
	case CreateBudget:
		return e.createBudget(ctx, params)
	case CreateCategory:
		return e.createCategory(ctx, params)
	case CreateFinancialAccount:
		return e.createAccount(ctx, params)
	case CreateGoal:
		return e.createGoal(ctx, params)
	case ContributeGoal:
		return e.contributeGoal(ctx, params)
	case CreateLiability:
		return e.createLiability(ctx, params)
	case TransferFunds:
		return e.transferFunds(ctx, params)
	case CreateCredential:
		return e.createCredential(ctx, params)
	case SearchKnowledge, GeneralChat:
		return "", fmt.Errorf("intent %q is not an executable action", tag)
	default:
		return "", fmt.Errorf("unknown intent %q", tag)
	}
}

// reaskError signals that a collected value failed parsing and its field
// must be asked for again.
type reaskError struct {
	field  string
	prompt string
}

func (e *reaskError) Error() string {
	return "invalid value for " + e.field
}

// amountField parses a strictly positive financial amount, accepting a
// leading currency sign and thousands separators.
func amountField(tag Tag, params map[string]string, field string) (float64, error) {
	raw := strings.TrimSpace(params[field])
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount <= 0 {
		delete(params, field)
		return 0, &reaskError{
			field:  field,
			prompt: "That doesn't look like a positive amount. " + PromptFor(tag, field),
		}
	}
	return amount, nil
}

func (e *Executor) createTask(ctx context.Context, params map[string]string) (string, error) {
	task := &model.Task{
		ID:    uuid.NewString(),
		Title: strings.TrimSpace(params["title"]),
		Notes: strings.TrimSpace(params["notes"]),
	}
	if due := strings.TrimSpace(params["due_date"]); due != "" {
		if parsed, err := time.Parse("2006-01-02", due); err == nil {
			task.DueDate = &parsed
		}
	}
	if err := e.store.CreateTask(ctx, task); err != nil {
		return "", common.NewUserError("Sorry, I couldn't save that task.", err)
	}

	e.index(ctx, model.Document{
		ID:      task.ID,
		Type:    model.DocumentTask,
		Title:   task.Title,
		Content: strings.TrimSpace(task.Title + "\n" + task.Notes),
		DueDate: task.DueDate,
	})

	if task.DueDate != nil {
		return fmt.Sprintf("Task added: %q, due %s.", task.Title, task.DueDate.Format("Jan 2")), nil
	}
	return fmt.Sprintf("Task added: %q.", task.Title), nil
}

func (e *Executor) createNote(ctx context.Context, params map[string]string) (string, error) {
	note := &model.Note{
		ID:      uuid.NewString(),
		Title:   strings.TrimSpace(params["title"]),
		Content: strings.TrimSpace(params["content"]),
	}
	if err := e.store.CreateNote(ctx, note); err != nil {
		return "", common.NewUserError("Sorry, I couldn't save that note.", err)
	}

	e.index(ctx, model.Document{
		ID:      note.ID,
		Type:    model.DocumentNote,
		Title:   note.Title,
		Content: note.Content,
	})

	return fmt.Sprintf("Saved your note %q.", note.Title), nil
}

func (e *Executor) createJournal(ctx context.Context, params map[string]string) (string, error) {
	now := time.Now()
	entry := &model.JournalEntry{
		ID:        uuid.NewString(),
		EntryDate: now,
		Content:   strings.TrimSpace(params["content"]),
		Mood:      strings.TrimSpace(params["mood"]),
	}
	if err := e.store.CreateJournalEntry(ctx, entry); err != nil {
		return "", common.NewUserError("Sorry, I couldn't save that journal entry.", err)
	}

	e.index(ctx, model.Document{
		ID:        entry.ID,
		Type:      model.DocumentJournal,
		Content:   entry.Content,
		EntryDate: &entry.EntryDate,
	})

	return fmt.Sprintf("Journal entry saved for %s.", now.Format("January 2")), nil
}

func (e *Executor) createTransaction(ctx context.Context, params map[string]string) (string, error) {
	amount, err := amountField(CreateTransaction, params, "amount")
	if err != nil {
		return "", err
	}

	kind := model.TransactionExpense
	if strings.EqualFold(strings.TrimSpace(params["kind"]), "income") {
		kind = model.TransactionIncome
	}

	txn := &model.Transaction{
		ID:          uuid.NewString(),
		Date:        time.Now(),
		Description: strings.TrimSpace(params["description"]),
		Category:    strings.TrimSpace(params["category"]),
		Kind:        kind,
		Amount:      amount,
	}
	if err := e.store.CreateTransaction(ctx, txn); err != nil {
		return "", common.NewUserError("Sorry, I couldn't record that transaction.", err)
	}

	return fmt.Sprintf("Recorded %s of $%.2f for %q.", kind, amount, txn.Description), nil
}

func (e *Executor) createRecurring(ctx context.Context, params map[string]string) (string, error) {
	amount, err := amountField(CreateRecurring, params, "amount")
	if err != nil {
		return "", err
	}

	rec := &model.RecurringTransaction{
		ID:          uuid.NewString(),
		Description: strings.TrimSpace(params["description"]),
		Category:    strings.TrimSpace(params["category"]),
		Frequency:   strings.ToLower(strings.TrimSpace(params["frequency"])),
		Kind:        model.TransactionExpense,
		Amount:      amount,
		NextRun:     time.Now(),
	}
	if err := e.store.CreateRecurringTransaction(ctx, rec); err != nil {
		return "", common.NewUserError("Sorry, I couldn't set up that recurring payment.", err)
	}

	return fmt.Sprintf("Scheduled %q: $%.2f %s.", rec.Description, amount, rec.Frequency), nil
}

func (e *Executor) createBudget(ctx context.Context, params map[string]string) (string, error) {
	amount, err := amountField(CreateBudget, params, "amount")
	if err != nil {
		return "", err
	}

	budget := &model.Budget{
		ID:       uuid.NewString(),
		Category: strings.TrimSpace(params["category"]),
		Period:   strings.ToLower(strings.TrimSpace(params["period"])),
		Limit:    amount,
	}
	if err := e.store.CreateBudget(ctx, budget); err != nil {
		return "", common.NewUserError("Sorry, I couldn't create that budget.", err)
	}

	return fmt.Sprintf("Budget set: $%.2f %s for %s.", amount, budget.Period, budget.Category), nil
}

func (e *Executor) createCategory(ctx context.Context, params map[string]string) (string, error) {
	catType := model.CategoryTypeExpense
	if strings.EqualFold(strings.TrimSpace(params["type"]), "income") {
		catType = model.CategoryTypeIncome
	}

	category := &model.Category{
		ID:   uuid.NewString(),
		Name: strings.TrimSpace(params["name"]),
		Type: catType,
	}
	if err := e.store.CreateCategory(ctx, category); err != nil {
		return "", common.NewUserError("Sorry, I couldn't create that category.", err)
	}

	return fmt.Sprintf("Added %s category %q.", catType, category.Name), nil
}

func (e *Executor) createAccount(ctx context.Context, params map[string]string) (string, error) {
	accountType := model.AccountType(strings.ToLower(strings.TrimSpace(params["type"])))
	switch accountType {
	case model.AccountChecking, model.AccountSavings, model.AccountCredit,
		model.AccountCash, model.AccountInvestment:
	default:
		delete(params, "type")
		return "", &reaskError{
			field:  "type",
			prompt: "I didn't recognize that account type. " + PromptFor(CreateFinancialAccount, "type"),
		}
	}

	var balance float64
	if raw := strings.TrimSpace(params["balance"]); raw != "" {
		cleaned := strings.NewReplacer("$", "", ",", "").Replace(raw)
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || parsed < 0 {
			delete(params, "balance")
			return "", &reaskError{
				field:  "balance",
				prompt: "That doesn't look like a starting balance. What's the current balance?",
			}
		}
		balance = parsed
	}

	account := &model.FinancialAccount{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(params["name"]),
		Type:    accountType,
		Icon:    model.AccountIcon(accountType),
		Balance: balance,
	}
	if err := e.store.CreateAccount(ctx, account); err != nil {
		return "", common.NewUserError("Sorry, I couldn't create that account.", err)
	}

	return fmt.Sprintf("%s %s account %q created with a balance of $%.2f.",
		account.Icon, account.Type, account.Name, account.Balance), nil
}

func (e *Executor) createGoal(ctx context.Context, params map[string]string) (string, error) {
	target, err := amountField(CreateGoal, params, "target_amount")
	if err != nil {
		return "", err
	}

	goal := &model.Goal{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(params["name"]),
		Icon:         model.GoalIcon(),
		TargetAmount: target,
	}
	if err := e.store.CreateGoal(ctx, goal); err != nil {
		return "", common.NewUserError("Sorry, I couldn't create that goal.", err)
	}

	return fmt.Sprintf("%s Goal %q created — target $%.2f.", goal.Icon, goal.Name, target), nil
}

func (e *Executor) contributeGoal(ctx context.Context, params map[string]string) (string, error) {
	amount, err := amountField(ContributeGoal, params, "amount")
	if err != nil {
		return "", err
	}

	goals, err := e.store.GetGoals(ctx)
	if err != nil {
		return "", common.NewUserError("Sorry, I couldn't look up your goals.", err)
	}
	goalMatch, err := e.resolver.Resolve(params["goal_name"], goalCandidates(goals))
	if err != nil {
		return "", common.NewUserError(
			fmt.Sprintf("I couldn't find a goal matching %q.", params["goal_name"]), err)
	}

	accountID := ""
	accountName := ""
	if name := strings.TrimSpace(params["account_name"]); name != "" {
		accounts, err := e.store.GetAccounts(ctx)
		if err != nil {
			return "", common.NewUserError("Sorry, I couldn't look up your accounts.", err)
		}
		match, err := e.resolver.Resolve(name, accountCandidates(accounts))
		if err != nil {
			return "", common.NewUserError(
				fmt.Sprintf("I couldn't find an account matching %q.", name), err)
		}
		accountID = match.ID
		accountName = match.Name
	}

	goal, err := e.store.AddGoalContribution(ctx, goalMatch.ID, accountID, amount)
	if err != nil {
		return "", executionError(err, "Sorry, I couldn't add that contribution.")
	}

	msg := fmt.Sprintf("Added $%.2f to %q — $%.2f of $%.2f (%.1f%%).",
		amount, goal.Name, goal.CurrentAmount, goal.TargetAmount, goal.Progress())
	if accountName != "" {
		msg = fmt.Sprintf("Added $%.2f from %s to %q — $%.2f of $%.2f (%.1f%%).",
			amount, accountName, goal.Name, goal.CurrentAmount, goal.TargetAmount, goal.Progress())
	}
	return msg, nil
}

func (e *Executor) createLiability(ctx context.Context, params map[string]string) (string, error) {
	amount, err := amountField(CreateLiability, params, "amount")
	if err != nil {
		return "", err
	}

	liabilityType := model.LiabilityType(strings.ToLower(strings.TrimSpace(params["type"])))
	switch liabilityType {
	case model.LiabilityLoan, model.LiabilityMortgage, model.LiabilityCard:
	default:
		liabilityType = model.LiabilityOther
	}

	liability := &model.Liability{
		ID:     uuid.NewString(),
		Name:   strings.TrimSpace(params["name"]),
		Type:   liabilityType,
		Icon:   model.LiabilityIcon(liabilityType),
		Amount: amount,
	}
	if err := e.store.CreateLiability(ctx, liability); err != nil {
		return "", common.NewUserError("Sorry, I couldn't record that liability.", err)
	}

	return fmt.Sprintf("%s Liability %q recorded: $%.2f outstanding.",
		liability.Icon, liability.Name, amount), nil
}

// transferFunds resolves both account names, then debits, credits and
// records the transfer through one atomic storage call. Balances are
// untouched when resolution or the balance check fails.
func (e *Executor) transferFunds(ctx context.Context, params map[string]string) (string, error) {
	amount, err := amountField(TransferFunds, params, "amount")
	if err != nil {
		return "", err
	}

	accounts, err := e.store.GetAccounts(ctx)
	if err != nil {
		return "", common.NewUserError("Sorry, I couldn't look up your accounts.", err)
	}
	candidates := accountCandidates(accounts)

	source, err := e.resolver.Resolve(params["from_account"], candidates)
	if err != nil {
		return "", common.NewUserError(
			fmt.Sprintf("I couldn't find an account matching %q.", params["from_account"]), err)
	}
	dest, err := e.resolver.Resolve(params["to_account"], candidates)
	if err != nil {
		return "", common.NewUserError(
			fmt.Sprintf("I couldn't find an account matching %q.", params["to_account"]), err)
	}
	if source.ID == dest.ID {
		return "", common.NewUserError("Source and destination are the same account.", common.ErrValidation)
	}

	description := strings.TrimSpace(params["description"])
	if description == "" {
		description = fmt.Sprintf("Transfer from %s to %s", source.Name, dest.Name)
	}

	if _, err := e.store.TransferFunds(ctx, source.ID, dest.ID, amount, description); err != nil {
		return "", executionError(err, "Sorry, the transfer didn't go through.")
	}

	from, err := e.store.GetAccountByID(ctx, source.ID)
	if err != nil {
		return "", err
	}
	to, err := e.store.GetAccountByID(ctx, dest.ID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Transferred $%.2f from %s to %s. %s now holds $%.2f and %s holds $%.2f.",
		amount, from.Name, to.Name, from.Name, from.Balance, to.Name, to.Balance), nil
}

func (e *Executor) createCredential(ctx context.Context, params map[string]string) (string, error) {
	credential := &model.Credential{
		ID:       uuid.NewString(),
		Platform: strings.TrimSpace(params["platform"]),
		Title:    strings.TrimSpace(params["title"]),
		Email:    strings.TrimSpace(params["email"]),
		Password: params["password"],
	}
	if err := e.store.CreateCredential(ctx, credential); err != nil {
		return "", common.NewUserError("Sorry, I couldn't save that credential.", err)
	}

	return fmt.Sprintf("Credential for %s saved as %q.", credential.Platform, credential.Title), nil
}

// index embeds and stores created content for semantic search. Indexing
// failures are logged, never surfaced: the record itself already saved.
func (e *Executor) index(ctx context.Context, doc model.Document) {
	if e.embedder == nil || strings.TrimSpace(doc.Content) == "" {
		return
	}

	embedding, err := e.embedder.Embed(ctx, doc.Content)
	if err != nil || len(embedding) == 0 {
		slog.Warn("Skipping semantic index for document", "id", doc.ID, "error", err)
		return
	}
	if err := e.store.IndexDocument(ctx, doc, embedding); err != nil {
		slog.Warn("Failed to index document", "id", doc.ID, "error", err)
	}
}

// executionError preserves user-facing messages for the error classes the
// user can act on and collapses everything else to a generic failure.
func executionError(err error, generic string) error {
	if userMsg := common.UserMessage(err, ""); userMsg != "" {
		return err
	}
	switch {
	case errors.Is(err, common.ErrInsufficientFunds):
		return common.NewUserError("Not enough funds: "+err.Error(), err)
	case errors.Is(err, common.ErrNotFound):
		return common.NewUserError("I couldn't find that record anymore.", err)
	default:
		return common.NewUserError(generic, err)
	}
}

func accountCandidates(accounts []model.FinancialAccount) []resolve.Candidate {
	candidates := make([]resolve.Candidate, len(accounts))
	for i, a := range accounts {
		candidates[i] = resolve.Candidate{ID: a.ID, Name: a.Name}
	}
	return candidates
}

func goalCandidates(goals []model.Goal) []resolve.Candidate {
	candidates := make([]resolve.Candidate, len(goals))
	for i, g := range goals {
		candidates[i] = resolve.Candidate{ID: g.ID, Name: g.Name}
	}
	return candidates
}
