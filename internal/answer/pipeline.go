// Package answer implements retrieval-augmented answering over the user's
// tasks, notes and journal entries.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/keeperhq/keeper/internal/common"
	"github.com/keeperhq/keeper/internal/model"
	"github.com/keeperhq/keeper/internal/service"
	"github.com/keeperhq/keeper/internal/temporal"
)

// Search tuning. Date-filtered queries cast a wider net because the range
// already narrows the candidate set.
const (
	filteredThreshold   = 0.3
	filteredLimit       = 10
	unfilteredThreshold = 0.5
	unfilteredLimit     = 5
)

// Searcher is the slice of storage the pipeline needs.
type Searcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, opts service.SearchOptions) ([]model.RetrievedDocument, error)
}

// Pipeline answers free-text questions grounded in retrieved records.
type Pipeline struct {
	embedder  service.Embedder
	searcher  Searcher
	generator service.Generator
	now       func() time.Time
}

// New creates an answering pipeline.
func New(embedder service.Embedder, searcher Searcher, generator service.Generator) *Pipeline {
	return &Pipeline{
		embedder:  embedder,
		searcher:  searcher,
		generator: generator,
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Answer runs the retrieval pipeline and streams the grounded answer.
// onChunk, when non-nil, receives each text chunk as it arrives. The
// returned string is the accumulated answer; on a mid-stream failure it
// holds whatever text had streamed before the error.
func (p *Pipeline) Answer(ctx context.Context, query string, onChunk func(string)) (string, error) {
	intent := temporal.Extract(query, p.now())

	embedText := query
	if intent.HasRange() {
		embedText = intent.CleanedQuery
	}
	if strings.TrimSpace(embedText) == "" {
		embedText = query
	}

	embedding, err := p.embedder.Embed(ctx, embedText)
	if err != nil || len(embedding) == 0 {
		if err == nil {
			err = common.ErrEmbedding
		}
		return "", common.NewUserError("Sorry, the search didn't work. Try again in a moment.",
			fmt.Errorf("%w: %v", common.ErrRetrieval, err))
	}

	opts := service.SearchOptions{
		Threshold: unfilteredThreshold,
		Limit:     unfilteredLimit,
	}
	if intent.HasRange() {
		opts = service.SearchOptions{
			Threshold: filteredThreshold,
			Limit:     filteredLimit,
			DateRange: &service.DateRange{Start: *intent.Start, End: *intent.End},
		}
	}

	docs, err := p.searcher.SearchSimilar(ctx, embedding, opts)
	if err != nil {
		return "", common.NewUserError("Sorry, the search didn't work. Try again in a moment.",
			fmt.Errorf("%w: %v", common.ErrRetrieval, err))
	}

	prompt := buildPrompt(query, intent, docs)

	chunks, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return "", common.NewUserError("Sorry, the search didn't work. Try again in a moment.",
			fmt.Errorf("%w: %v", common.ErrRetrieval, err))
	}

	var b strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			// Keep whatever already streamed.
			slog.Warn("Answer stream ended early", "error", chunk.Err)
			return b.String(), nil
		}
		b.WriteString(chunk.Text)
		if onChunk != nil {
			onChunk(chunk.Text)
		}
	}

	return b.String(), nil
}

// buildPrompt assembles the grounding context and final instruction.
func buildPrompt(query string, intent model.TemporalIntent, docs []model.RetrievedDocument) string {
	var b strings.Builder
	b.WriteString("Answer the user's question using only the records below. ")
	b.WriteString("Be brief and concrete. If the records don't contain the answer, say so.\n\n")

	if intent.HasRange() {
		b.WriteString(fmt.Sprintf("The user is asking about %s (%s to %s).\n\n",
			temporalLabel(intent.Type),
			intent.Start.Format("Jan 2, 2006"),
			intent.End.Format("Jan 2, 2006")))
	}

	context := assembleContext(docs)
	if context == "" {
		b.WriteString("No matching records were found.\n")
	} else {
		b.WriteString("Records:\n\n")
		b.WriteString(context)
		b.WriteString("\n")
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	return b.String()
}

// assembleContext renders retrieved documents with type-specific headers,
// joined by blank lines.
func assembleContext(docs []model.RetrievedDocument) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, documentHeader(doc)+"\n"+doc.Content)
	}
	return strings.Join(parts, "\n\n")
}

func documentHeader(doc model.RetrievedDocument) string {
	switch doc.Type {
	case model.DocumentTask:
		if doc.DueDate != nil {
			return fmt.Sprintf("[Task: %s, due %s]", doc.Title, doc.DueDate.Format("Jan 2, 2006"))
		}
		return fmt.Sprintf("[Task: %s]", doc.Title)
	case model.DocumentJournal:
		if doc.EntryDate != nil {
			return fmt.Sprintf("[Journal entry, %s]", doc.EntryDate.Format("Jan 2, 2006"))
		}
		return "[Journal entry]"
	case model.DocumentNote:
		if doc.Title != "" {
			return fmt.Sprintf("[Note: %s]", doc.Title)
		}
		return "[Note]"
	default:
		return "[Record]"
	}
}

func temporalLabel(t model.TemporalType) string {
	return strings.ReplaceAll(string(t), "_", " ")
}
