// Package intent defines the closed set of user intents and executes them.
package intent

import "strings"

// Tag identifies a classified user intent. The set is closed: the executor
// switches exhaustively over these values and unknown tags are rejected.
type Tag string

const (
	CreateTask             Tag = "create_task"
	CreateNote             Tag = "create_note"
	CreateJournal          Tag = "create_journal"
	CreateTransaction      Tag = "create_transaction"
	CreateRecurring        Tag = "create_recurring"
	CreateBudget           Tag = "create_budget"
	CreateCategory         Tag = "create_category"
	CreateFinancialAccount Tag = "create_financial_account"
	CreateGoal             Tag = "create_goal"
	ContributeGoal         Tag = "contribute_goal"
	CreateLiability        Tag = "create_liability"
	TransferFunds          Tag = "transfer_funds"
	CreateCredential       Tag = "create_account"
	SearchKnowledge        Tag = "search_knowledge"
	GeneralChat            Tag = "general_chat"
)

// All returns every valid tag, in a stable order.
func All() []Tag {
	return []Tag{
		CreateTask, CreateNote, CreateJournal, CreateTransaction,
		CreateRecurring, CreateBudget, CreateCategory,
		CreateFinancialAccount, CreateGoal, ContributeGoal,
		CreateLiability, TransferFunds, CreateCredential,
		SearchKnowledge, GeneralChat,
	}
}

// Valid reports whether t is a member of the closed intent set.
func (t Tag) Valid() bool {
	switch t {
	case CreateTask, CreateNote, CreateJournal, CreateTransaction,
		CreateRecurring, CreateBudget, CreateCategory,
		CreateFinancialAccount, CreateGoal, ContributeGoal,
		CreateLiability, TransferFunds, CreateCredential,
		SearchKnowledge, GeneralChat:
		return true
	}
	return false
}

// OpenEnded reports whether the intent uses the open-ended continuation
// convention: once required fields are filled, further turns append to
// the content field until a closing phrase arrives.
func (t Tag) OpenEnded() bool {
	return t == CreateNote || t == CreateJournal
}

// requiredFields lists the parameters each intent must collect, in the
// order the dialogue asks for them.
var requiredFields = map[Tag][]string{
	CreateTask:             {"title"},
	CreateNote:             {"title", "content"},
	CreateJournal:          {"content"},
	CreateTransaction:      {"description", "amount"},
	CreateRecurring:        {"description", "amount", "frequency"},
	CreateBudget:           {"category", "amount", "period"},
	CreateCategory:         {"name"},
	CreateFinancialAccount: {"name", "type"},
	CreateGoal:             {"name", "target_amount"},
	ContributeGoal:         {"goal_name", "amount"},
	CreateLiability:        {"name", "amount"},
	TransferFunds:          {"from_account", "to_account", "amount"},
	// Credential fields are always collected turn by turn; the classifier's
	// extraction is never trusted for this intent.
	CreateCredential: {"platform", "title", "email", "password"},
}

// RequiredFields returns a copy of the intent's required field order.
func RequiredFields(t Tag) []string {
	fields := requiredFields[t]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// MissingFields returns the required fields not present (or blank) in
// params, preserving the asking order.
func MissingFields(t Tag, params map[string]string) []string {
	var missing []string
	for _, field := range requiredFields[t] {
		if strings.TrimSpace(params[field]) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// fieldPrompts carries the intent-and-field-specific question copy. When
// no entry exists the generic prompt is used.
var fieldPrompts = map[Tag]map[string]string{
	CreateTask: {
		"title": "What should the task be called?",
	},
	CreateNote: {
		"title":   "What should I title the note?",
		"content": "Go ahead — what's the note? Say \"done\" when you're finished.",
	},
	CreateJournal: {
		"content": "I'm listening — write as much as you like, and say \"done\" to save the entry.",
	},
	CreateTransaction: {
		"description": "What was the transaction for?",
		"amount":      "How much was it?",
	},
	CreateRecurring: {
		"description": "What's the recurring payment for?",
		"amount":      "How much is it each time?",
		"frequency":   "How often does it repeat? (daily, weekly, monthly...)",
	},
	CreateBudget: {
		"category": "Which category is this budget for?",
		"amount":   "What's the spending limit?",
		"period":   "Over what period? (weekly, monthly...)",
	},
	CreateFinancialAccount: {
		"name": "What should the account be called?",
		"type": "What kind of account is it? (checking, savings, credit, cash, investment)",
	},
	CreateGoal: {
		"name":          "What are you saving for?",
		"target_amount": "How much do you want to save in total?",
	},
	ContributeGoal: {
		"goal_name": "Which goal is this for?",
		"amount":    "How much would you like to contribute?",
	},
	CreateLiability: {
		"name":   "What should I call this liability?",
		"amount": "How much is outstanding?",
	},
	TransferFunds: {
		"from_account": "Which account should the money come from?",
		"to_account":   "Which account should it go to?",
		"amount":       "How much would you like to transfer?",
	},
	CreateCredential: {
		"platform": "Which platform is this login for?",
		"title":    "What should I label this credential?",
		"email":    "What's the email or username?",
		"password": "And the password? It stays on this device.",
	},
}

// PromptFor returns the question to ask for an intent's field.
func PromptFor(t Tag, field string) string {
	if prompts, ok := fieldPrompts[t]; ok {
		if prompt, ok := prompts[field]; ok {
			return prompt
		}
	}
	return "What's the " + strings.ReplaceAll(field, "_", " ") + "?"
}
