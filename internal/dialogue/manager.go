package dialogue

import (
	"context"
	"log/slog"
	"strings"

	"github.com/keeperhq/keeper/internal/answer"
	"github.com/keeperhq/keeper/internal/common"
	"github.com/keeperhq/keeper/internal/intent"
	"github.com/keeperhq/keeper/internal/model"
	"github.com/keeperhq/keeper/internal/service"
)

const (
	genericFailure    = "Sorry, that didn't work. Nothing was changed — try again when you're ready."
	classifyFailure   = "Sorry, I didn't catch that. Could you rephrase?"
	canceledMessage   = "Okay, I've dropped that. What would you like to do instead?"
	continueHint      = "Got it. Keep going, or say \"done\" to save."
	emptyAnswerNotice = "I couldn't find anything about that in your records."
)

// closingPhrases end an open-ended note or journal dictation. Matching is
// case-insensitive on the trimmed turn text.
var closingPhrases = map[string]struct{}{
	"done":       {},
	"save":       {},
	"save it":    {},
	"that's all": {},
	"thats all":  {},
	"that's it":  {},
	"finish":     {},
	"finished":   {},
}

// abortPhrases drop the pending action mid-collection.
var abortPhrases = map[string]struct{}{
	"cancel":     {},
	"stop":       {},
	"never mind": {},
	"nevermind":  {},
	"forget it":  {},
}

// Manager routes each user turn: slot filling when an action is pending,
// otherwise classification and dispatch.
type Manager struct {
	store      service.Storage
	classifier service.Classifier
	executor   *intent.Executor
	answerer   *answer.Pipeline
}

// NewManager wires the dialogue engine.
func NewManager(store service.Storage, classifier service.Classifier, executor *intent.Executor, answerer *answer.Pipeline) *Manager {
	return &Manager{
		store:      store,
		classifier: classifier,
		executor:   executor,
		answerer:   answerer,
	}
}

// HandleTurn processes one user turn and returns the engine's reply turn.
// Collaborator failures never escape as errors; they become user-visible
// messages, and the pending action is cleared so the user can start over.
// onChunk, when non-nil, receives streamed answer text as it arrives.
func (m *Manager) HandleTurn(ctx context.Context, session *Session, text string, onChunk func(string)) model.ConversationTurn {
	session.mu.Lock()
	defer session.mu.Unlock()

	userTurn := session.append(model.NewTurn(session.id, model.RoleUser, text))
	m.persist(ctx, userTurn)

	var reply model.ConversationTurn
	if session.pending != nil {
		reply = m.handlePending(ctx, session, text)
	} else {
		reply = m.handleNew(ctx, session, text, onChunk)
	}

	reply = session.append(reply)
	m.persist(ctx, reply)
	return reply
}

// handlePending applies the turn to the open pending action.
func (m *Manager) handlePending(ctx context.Context, session *Session, text string) model.ConversationTurn {
	pending := session.pending
	tag := intent.Tag(pending.Intent)
	trimmed := strings.ToLower(strings.TrimSpace(text))

	if _, aborted := abortPhrases[trimmed]; aborted {
		session.pending = nil
		return model.NewTurn(session.id, model.RoleAssistant, canceledMessage)
	}

	// Open-ended continuation: once the initial fields are in, every turn
	// appends content until a closing phrase executes the action.
	if tag.OpenEnded() && pending.Complete() {
		if _, closing := closingPhrases[trimmed]; closing {
			return m.execute(ctx, session, tag, pending.Params)
		}
		pending.Params["content"] = pending.Params["content"] + "\n\n" + text
		return model.NewTurn(session.id, model.RoleAssistant, continueHint)
	}

	// The turn's text is, verbatim, the value of the field being asked.
	pending.Fill(text)

	if !pending.Complete() {
		prompt := intent.PromptFor(tag, pending.NextField())
		return model.NewTurn(session.id, model.RoleAssistant, prompt)
	}

	if tag.OpenEnded() {
		// Required fields are in; stay open for more content.
		return model.NewTurn(session.id, model.RoleAssistant, continueHint)
	}

	return m.execute(ctx, session, tag, pending.Params)
}

// handleNew classifies a fresh turn and dispatches it.
func (m *Manager) handleNew(ctx context.Context, session *Session, text string, onChunk func(string)) model.ConversationTurn {
	classification, err := m.classifier.Classify(ctx, text)
	if err != nil {
		slog.Error("Intent classification failed", "error", err)
		return model.NewTurn(session.id, model.RoleAssistant, classifyFailure)
	}

	tag := intent.Tag(classification.Intent)
	switch tag {
	case intent.SearchKnowledge:
		query := classification.OriginalQuery
		if strings.TrimSpace(query) == "" {
			query = text
		}
		answerText, err := m.answerer.Answer(ctx, query, onChunk)
		if err != nil {
			return model.NewTurn(session.id, model.RoleAssistant,
				common.UserMessage(err, "Sorry, the search didn't work. Try again in a moment."))
		}
		if strings.TrimSpace(answerText) == "" {
			answerText = emptyAnswerNotice
		}
		return model.NewTurn(session.id, model.RoleAssistant, answerText)

	case intent.GeneralChat:
		reply := classification.Confirmation
		if strings.TrimSpace(reply) == "" {
			reply = "I'm here — ask me about your tasks, money or notes."
		}
		return model.NewTurn(session.id, model.RoleAssistant, reply)

	case intent.CreateCredential:
		// Secrets only ever flow through the direct-turn path: whatever the
		// classifier extracted for this intent is discarded and every field
		// is collected turn by turn.
		session.pending = model.NewPendingAction(string(tag), nil, intent.RequiredFields(tag))
		return model.NewTurn(session.id, model.RoleAssistant, intent.PromptFor(tag, session.pending.NextField()))

	default:
		return m.dispatch(ctx, session, tag, classification.Params)
	}
}

// dispatch hands extracted params to the executor, opening a pending
// action when fields are missing. A new intent always overwrites any
// previous pending action.
func (m *Manager) dispatch(ctx context.Context, session *Session, tag intent.Tag, params map[string]string) model.ConversationTurn {
	if params == nil {
		params = make(map[string]string)
	}

	result, err := m.executor.Execute(ctx, tag, params)
	if err != nil {
		session.pending = nil
		return model.NewTurn(session.id, model.RoleAssistant, common.UserMessage(err, genericFailure))
	}

	if result.Status == intent.StatusIncomplete {
		session.pending = newPending(tag, params, result.MissingFields)
		return model.NewTurn(session.id, model.RoleAssistant, result.Prompt)
	}

	session.pending = nil
	return model.NewTurn(session.id, model.RoleConfirmation, result.Confirmation)
}

// execute runs a completed pending action.
func (m *Manager) execute(ctx context.Context, session *Session, tag intent.Tag, params map[string]string) model.ConversationTurn {
	result, err := m.executor.Execute(ctx, tag, params)
	if err != nil {
		// Terminal: report once and clear. Never re-prompt automatically.
		session.pending = nil
		return model.NewTurn(session.id, model.RoleAssistant, common.UserMessage(err, genericFailure))
	}

	if result.Status == intent.StatusIncomplete {
		// A collected value failed validation; ask for it again.
		session.pending = newPending(tag, params, result.MissingFields)
		return model.NewTurn(session.id, model.RoleAssistant, result.Prompt)
	}

	session.pending = nil
	return model.NewTurn(session.id, model.RoleConfirmation, result.Confirmation)
}

// newPending builds a pending action whose params exclude the fields
// still being asked for.
func newPending(tag intent.Tag, params map[string]string, missing []string) *model.PendingAction {
	filled := make(map[string]string, len(params))
	for k, v := range params {
		filled[k] = v
	}
	for _, field := range missing {
		delete(filled, field)
	}
	return model.NewPendingAction(string(tag), filled, missing)
}

// persist appends the turn to the durable conversation log. Log writes
// are best effort; the in-memory session stays authoritative for the UI.
func (m *Manager) persist(ctx context.Context, turn model.ConversationTurn) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveTurn(ctx, turn); err != nil {
		slog.Warn("Failed to persist conversation turn", "turn", turn.ID, "error", err)
	}
}
