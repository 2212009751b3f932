package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagValid(t *testing.T) {
	for _, tag := range All() {
		assert.True(t, tag.Valid(), "tag %q", tag)
	}

	assert.False(t, Tag("make_coffee").Valid())
	assert.False(t, Tag("").Valid())
}

func TestOpenEnded(t *testing.T) {
	assert.True(t, CreateNote.OpenEnded())
	assert.True(t, CreateJournal.OpenEnded())
	assert.False(t, CreateTask.OpenEnded())
	assert.False(t, TransferFunds.OpenEnded())
}

func TestMissingFieldsOrder(t *testing.T) {
	missing := MissingFields(TransferFunds, nil)
	assert.Equal(t, []string{"from_account", "to_account", "amount"}, missing)

	missing = MissingFields(TransferFunds, map[string]string{"to_account": "savings"})
	assert.Equal(t, []string{"from_account", "amount"}, missing)

	missing = MissingFields(TransferFunds, map[string]string{
		"from_account": "checking",
		"to_account":   "savings",
		"amount":       "50",
	})
	assert.Empty(t, missing)
}

func TestMissingFieldsBlankValues(t *testing.T) {
	missing := MissingFields(CreateTask, map[string]string{"title": "   "})
	assert.Equal(t, []string{"title"}, missing)
}

func TestRequiredFieldsReturnsCopy(t *testing.T) {
	fields := RequiredFields(TransferFunds)
	fields[0] = "mutated"

	assert.Equal(t, []string{"from_account", "to_account", "amount"}, RequiredFields(TransferFunds))
}

func TestCredentialFieldOrder(t *testing.T) {
	// The fixed turn-by-turn collection order for credentials.
	assert.Equal(t, []string{"platform", "title", "email", "password"}, RequiredFields(CreateCredential))
}

func TestPromptFor(t *testing.T) {
	assert.Equal(t, "Which account should the money come from?", PromptFor(TransferFunds, "from_account"))
	assert.Equal(t, "What's the due date?", PromptFor(CreateTask, "due_date"))
	assert.Equal(t, "What's the frobnicator?", PromptFor(GeneralChat, "frobnicator"))
}
