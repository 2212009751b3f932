package dialogue

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/keeperhq/keeper/internal/answer"
	"github.com/keeperhq/keeper/internal/intent"
	"github.com/keeperhq/keeper/internal/model"
	"github.com/keeperhq/keeper/internal/resolve"
	"github.com/keeperhq/keeper/internal/service"
	"github.com/keeperhq/keeper/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClassifier returns canned classifications in call order.
type scriptedClassifier struct {
	results []*service.Classification
	errs    []error
	calls   int
}

func (c *scriptedClassifier) Classify(context.Context, string) (*service.Classification, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	if i >= len(c.results) {
		return nil, errors.New("no scripted classification left")
	}
	return c.results[i], nil
}

type fixedEmbedder struct {
	vector []float32
}

func (f *fixedEmbedder) Embed(context.Context, string) ([]float32, error) {
	return f.vector, nil
}

type fixedSearcher struct {
	docs []model.RetrievedDocument
}

func (f *fixedSearcher) SearchSimilar(context.Context, []float32, service.SearchOptions) ([]model.RetrievedDocument, error) {
	return f.docs, nil
}

type fixedGenerator struct {
	chunks []service.GenerationChunk
}

func (f *fixedGenerator) Generate(context.Context, string) (<-chan service.GenerationChunk, error) {
	ch := make(chan service.GenerationChunk, len(f.chunks))
	for _, c := range f.chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

type managerFixture struct {
	manager *Manager
	store   *storage.SQLiteStorage
	session *Session
}

func newFixture(t *testing.T, classifier service.Classifier, answerer *answer.Pipeline) *managerFixture {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	executor := intent.NewExecutor(store, resolve.NewContainment())
	return &managerFixture{
		manager: NewManager(store, classifier, executor, answerer),
		store:   store,
		session: NewSession(),
	}
}

func addAccount(t *testing.T, store *storage.SQLiteStorage, name string, balance float64) {
	t.Helper()

	require.NoError(t, store.CreateAccount(context.Background(), &model.FinancialAccount{
		ID:      uuid.NewString(),
		Name:    name,
		Type:    model.AccountChecking,
		Icon:    model.AccountIcon(model.AccountChecking),
		Balance: balance,
	}))
}

func TestSlotFillingCollectsFieldsInOrder(t *testing.T) {
	classifier := &scriptedClassifier{results: []*service.Classification{
		{Intent: "transfer_funds"},
	}}
	f := newFixture(t, classifier, nil)
	addAccount(t, f.store, "Main Checking", 500)
	addAccount(t, f.store, "My Savings Account", 100)
	ctx := context.Background()

	reply := f.manager.HandleTurn(ctx, f.session, "move some money around", nil)
	assert.Equal(t, "Which account should the money come from?", reply.Text)
	require.NotNil(t, f.session.Pending())

	reply = f.manager.HandleTurn(ctx, f.session, "checking", nil)
	assert.Equal(t, "Which account should it go to?", reply.Text)

	reply = f.manager.HandleTurn(ctx, f.session, "savings", nil)
	assert.Equal(t, "How much would you like to transfer?", reply.Text)

	reply = f.manager.HandleTurn(ctx, f.session, "150", nil)
	assert.Equal(t, model.RoleConfirmation, reply.Role)
	assert.Contains(t, reply.Text, "Transferred $150.00 from Main Checking to My Savings Account")
	assert.Nil(t, f.session.Pending())
}

func TestPartialParamsOnlyAskMissing(t *testing.T) {
	classifier := &scriptedClassifier{results: []*service.Classification{
		{Intent: "transfer_funds", Params: map[string]string{
			"from_account": "checking",
			"amount":       "50",
		}},
	}}
	f := newFixture(t, classifier, nil)
	addAccount(t, f.store, "Main Checking", 500)
	addAccount(t, f.store, "My Savings Account", 100)
	ctx := context.Background()

	reply := f.manager.HandleTurn(ctx, f.session, "move 50 from checking", nil)
	assert.Equal(t, "Which account should it go to?", reply.Text)

	reply = f.manager.HandleTurn(ctx, f.session, "savings", nil)
	assert.Equal(t, model.RoleConfirmation, reply.Role)
	assert.Contains(t, reply.Text, "Transferred $50.00")
}

func TestAbortClearsPending(t *testing.T) {
	classifier := &scriptedClassifier{results: []*service.Classification{
		{Intent: "transfer_funds"},
		{Intent: "general_chat", Confirmation: "Hello!"},
	}}
	f := newFixture(t, classifier, nil)
	ctx := context.Background()

	f.manager.HandleTurn(ctx, f.session, "transfer money", nil)
	require.NotNil(t, f.session.Pending())

	reply := f.manager.HandleTurn(ctx, f.session, "never mind", nil)
	assert.Equal(t, canceledMessage, reply.Text)
	assert.Nil(t, f.session.Pending())

	// The next turn classifies fresh.
	reply = f.manager.HandleTurn(ctx, f.session, "hi", nil)
	assert.Equal(t, "Hello!", reply.Text)
}

func TestOpenEndedJournalDictation(t *testing.T) {
	classifier := &scriptedClassifier{results: []*service.Classification{
		{Intent: "create_journal"},
	}}
	f := newFixture(t, classifier, nil)
	ctx := context.Background()

	reply := f.manager.HandleTurn(ctx, f.session, "I want to journal", nil)
	assert.Contains(t, reply.Text, "I'm listening")

	reply = f.manager.HandleTurn(ctx, f.session, "Long walk in the rain today.", nil)
	assert.Equal(t, continueHint, reply.Text)

	reply = f.manager.HandleTurn(ctx, f.session, "Felt good to clear my head.", nil)
	assert.Equal(t, continueHint, reply.Text)

	// Closing phrase executes; the accumulated content was joined with
	// blank lines.
	pending := f.session.Pending()
	require.NotNil(t, pending)
	assert.Equal(t, "Long walk in the rain today.\n\nFelt good to clear my head.", pending.Params["content"])

	reply = f.manager.HandleTurn(ctx, f.session, "done", nil)
	assert.Equal(t, model.RoleConfirmation, reply.Role)
	assert.Contains(t, reply.Text, "Journal entry saved")
	assert.Nil(t, f.session.Pending())
}

func TestOpenEndedClosingPhraseVariants(t *testing.T) {
	for _, phrase := range []string{"Done", "save it", "that's all", "FINISHED"} {
		t.Run(phrase, func(t *testing.T) {
			classifier := &scriptedClassifier{results: []*service.Classification{
				{Intent: "create_journal"},
			}}
			f := newFixture(t, classifier, nil)
			ctx := context.Background()

			f.manager.HandleTurn(ctx, f.session, "journal time", nil)

			reply := f.manager.HandleTurn(ctx, f.session, "short entry", nil)
			assert.Equal(t, continueHint, reply.Text)

			reply = f.manager.HandleTurn(ctx, f.session, phrase, nil)
			assert.Equal(t, model.RoleConfirmation, reply.Role)
		})
	}
}

func TestOpenEndedWithExtractedContentSavesImmediately(t *testing.T) {
	// When the classifier already extracted the content, nothing is
	// missing and the entry saves without a dictation phase.
	classifier := &scriptedClassifier{results: []*service.Classification{
		{Intent: "create_journal", Params: map[string]string{"content": "short entry"}},
	}}
	f := newFixture(t, classifier, nil)

	reply := f.manager.HandleTurn(context.Background(), f.session, "journal: short entry", nil)
	assert.Equal(t, model.RoleConfirmation, reply.Role)
	assert.Nil(t, f.session.Pending())
}

func TestCredentialParamsNeverTrusted(t *testing.T) {
	classifier := &scriptedClassifier{results: []*service.Classification{
		{Intent: "create_account", Params: map[string]string{
			"platform": "example.com",
			"password": "leaked-by-classifier",
		}},
	}}
	f := newFixture(t, classifier, nil)
	ctx := context.Background()

	reply := f.manager.HandleTurn(ctx, f.session, "save my example.com login", nil)
	assert.Equal(t, "Which platform is this login for?", reply.Text)

	// Whatever the classifier extracted was discarded; all four fields
	// are collected turn by turn.
	pending := f.session.Pending()
	require.NotNil(t, pending)
	assert.Empty(t, pending.Params)
	assert.Equal(t, []string{"platform", "title", "email", "password"}, pending.MissingFields)

	f.manager.HandleTurn(ctx, f.session, "example.com", nil)
	f.manager.HandleTurn(ctx, f.session, "Example", nil)
	f.manager.HandleTurn(ctx, f.session, "me@example.com", nil)
	reply = f.manager.HandleTurn(ctx, f.session, "hunter2", nil)

	assert.Equal(t, model.RoleConfirmation, reply.Role)
	assert.Contains(t, reply.Text, "example.com")
	assert.NotContains(t, reply.Text, "hunter2")
}

func TestClassifierFailureBecomesMessage(t *testing.T) {
	classifier := &scriptedClassifier{errs: []error{errors.New("upstream down")}}
	f := newFixture(t, classifier, nil)

	reply := f.manager.HandleTurn(context.Background(), f.session, "do something", nil)
	assert.Equal(t, classifyFailure, reply.Text)
	assert.Nil(t, f.session.Pending())
}

func TestExecutionFailureClearsPending(t *testing.T) {
	classifier := &scriptedClassifier{results: []*service.Classification{
		{Intent: "transfer_funds", Params: map[string]string{
			"from_account": "checking",
			"to_account":   "savings",
			"amount":       "999",
		}},
	}}
	f := newFixture(t, classifier, nil)
	addAccount(t, f.store, "Main Checking", 100)
	addAccount(t, f.store, "My Savings Account", 100)

	reply := f.manager.HandleTurn(context.Background(), f.session, "move 999 to savings", nil)
	assert.Contains(t, reply.Text, "Not enough funds")
	assert.Nil(t, f.session.Pending())
}

func TestBadAmountReasksMidDialogue(t *testing.T) {
	classifier := &scriptedClassifier{results: []*service.Classification{
		{Intent: "transfer_funds", Params: map[string]string{
			"from_account": "checking",
			"to_account":   "savings",
		}},
	}}
	f := newFixture(t, classifier, nil)
	addAccount(t, f.store, "Main Checking", 500)
	addAccount(t, f.store, "My Savings Account", 100)
	ctx := context.Background()

	reply := f.manager.HandleTurn(ctx, f.session, "move money to savings", nil)
	assert.Equal(t, "How much would you like to transfer?", reply.Text)

	reply = f.manager.HandleTurn(ctx, f.session, "a bunch", nil)
	assert.Contains(t, reply.Text, "positive amount")
	require.NotNil(t, f.session.Pending())
	assert.Equal(t, []string{"amount"}, f.session.Pending().MissingFields)

	reply = f.manager.HandleTurn(ctx, f.session, "75", nil)
	assert.Equal(t, model.RoleConfirmation, reply.Role)
	assert.Contains(t, reply.Text, "Transferred $75.00")
}

func TestGeneralChatReply(t *testing.T) {
	classifier := &scriptedClassifier{results: []*service.Classification{
		{Intent: "general_chat", Confirmation: "Good morning!"},
		{Intent: "general_chat"},
	}}
	f := newFixture(t, classifier, nil)
	ctx := context.Background()

	reply := f.manager.HandleTurn(ctx, f.session, "good morning", nil)
	assert.Equal(t, "Good morning!", reply.Text)

	reply = f.manager.HandleTurn(ctx, f.session, "hm", nil)
	assert.Equal(t, "I'm here — ask me about your tasks, money or notes.", reply.Text)
}

func TestSearchKnowledgeStreamsAnswer(t *testing.T) {
	classifier := &scriptedClassifier{results: []*service.Classification{
		{Intent: "search_knowledge", OriginalQuery: "what did I plant"},
	}}
	answerer := answer.New(
		&fixedEmbedder{vector: []float32{1, 0, 0}},
		&fixedSearcher{docs: []model.RetrievedDocument{{
			Document:   model.Document{Type: model.DocumentNote, Title: "Garden", Content: "planted tomatoes"},
			Similarity: 0.9,
		}}},
		&fixedGenerator{chunks: []service.GenerationChunk{
			{Text: "You planted "}, {Text: "tomatoes."},
		}},
	)
	f := newFixture(t, classifier, answerer)

	var streamed string
	reply := f.manager.HandleTurn(context.Background(), f.session, "what did I plant", func(chunk string) {
		streamed += chunk
	})

	assert.Equal(t, "You planted tomatoes.", streamed)
	assert.Equal(t, "You planted tomatoes.", reply.Text)
	assert.Equal(t, model.RoleAssistant, reply.Role)
}

func TestSearchKnowledgeEmptyAnswer(t *testing.T) {
	classifier := &scriptedClassifier{results: []*service.Classification{
		{Intent: "search_knowledge"},
	}}
	answerer := answer.New(
		&fixedEmbedder{vector: []float32{1, 0, 0}},
		&fixedSearcher{},
		&fixedGenerator{},
	)
	f := newFixture(t, classifier, answerer)

	reply := f.manager.HandleTurn(context.Background(), f.session, "anything about xyzzy?", nil)
	assert.Equal(t, emptyAnswerNotice, reply.Text)
}

func TestTurnsPersistedInOrder(t *testing.T) {
	classifier := &scriptedClassifier{results: []*service.Classification{
		{Intent: "general_chat", Confirmation: "Hi!"},
	}}
	f := newFixture(t, classifier, nil)
	ctx := context.Background()

	f.manager.HandleTurn(ctx, f.session, "hello", nil)

	turns, err := f.store.GetTurns(ctx, f.session.ID(), 0)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, model.RoleUser, turns[0].Role)
	assert.Equal(t, "hello", turns[0].Text)
	assert.Equal(t, model.RoleAssistant, turns[1].Role)
	assert.Equal(t, "Hi!", turns[1].Text)

	// The in-memory log mirrors the durable one.
	local := f.session.Turns()
	require.Len(t, local, 2)
	assert.Equal(t, int64(1), local[0].Sequence)
	assert.Equal(t, int64(2), local[1].Sequence)
}

func TestUnknownIntentBecomesGenericFailure(t *testing.T) {
	classifier := &scriptedClassifier{results: []*service.Classification{
		{Intent: "make_coffee"},
	}}
	f := newFixture(t, classifier, nil)

	reply := f.manager.HandleTurn(context.Background(), f.session, "make me a coffee", nil)
	assert.Equal(t, genericFailure, reply.Text)
	assert.Nil(t, f.session.Pending())
}
