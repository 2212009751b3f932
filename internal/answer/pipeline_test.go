package answer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keeperhq/keeper/internal/common"
	"github.com/keeperhq/keeper/internal/model"
	"github.com/keeperhq/keeper/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vector   []float32
	err      error
	lastText string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.lastText = text
	return s.vector, s.err
}

type stubSearcher struct {
	docs     []model.RetrievedDocument
	err      error
	lastOpts service.SearchOptions
}

func (s *stubSearcher) SearchSimilar(_ context.Context, _ []float32, opts service.SearchOptions) ([]model.RetrievedDocument, error) {
	s.lastOpts = opts
	return s.docs, s.err
}

type stubGenerator struct {
	chunks     []service.GenerationChunk
	err        error
	lastPrompt string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (<-chan service.GenerationChunk, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan service.GenerationChunk, len(s.chunks))
	for _, c := range s.chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

var fixedNow = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

func newTestPipeline(embedder *stubEmbedder, searcher *stubSearcher, generator *stubGenerator) *Pipeline {
	return New(embedder, searcher, generator).WithClock(func() time.Time { return fixedNow })
}

func TestAnswerStreamsChunks(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{1, 0}}
	searcher := &stubSearcher{docs: []model.RetrievedDocument{{
		Document:   model.Document{Type: model.DocumentNote, Title: "Garden", Content: "planted tomatoes"},
		Similarity: 0.92,
	}}}
	generator := &stubGenerator{chunks: []service.GenerationChunk{
		{Text: "You planted "}, {Text: "tomatoes."},
	}}
	p := newTestPipeline(embedder, searcher, generator)

	var streamed []string
	got, err := p.Answer(context.Background(), "what did I plant", func(chunk string) {
		streamed = append(streamed, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, "You planted tomatoes.", got)
	assert.Equal(t, []string{"You planted ", "tomatoes."}, streamed)
}

func TestAnswerTemporalQueryFiltersSearch(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{1, 0}}
	searcher := &stubSearcher{}
	generator := &stubGenerator{chunks: []service.GenerationChunk{{Text: "Nothing."}}}
	p := newTestPipeline(embedder, searcher, generator)

	_, err := p.Answer(context.Background(), "what did I journal yesterday", nil)
	require.NoError(t, err)

	// The temporal phrase was stripped before embedding.
	assert.Equal(t, "what did I journal", embedder.lastText)

	// A dated query loosens the threshold and widens the limit.
	require.NotNil(t, searcher.lastOpts.DateRange)
	assert.InDelta(t, 0.3, searcher.lastOpts.Threshold, 0.0001)
	assert.Equal(t, 10, searcher.lastOpts.Limit)
	assert.Equal(t, 11, searcher.lastOpts.DateRange.Start.Day())
	assert.Equal(t, 11, searcher.lastOpts.DateRange.End.Day())

	// The prompt tells the generator which window the user meant.
	assert.Contains(t, generator.lastPrompt, "yesterday")
	assert.Contains(t, generator.lastPrompt, "Mar 11, 2025")
}

func TestAnswerPlainQueryUsesDefaults(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{1, 0}}
	searcher := &stubSearcher{}
	generator := &stubGenerator{chunks: []service.GenerationChunk{{Text: "Nothing."}}}
	p := newTestPipeline(embedder, searcher, generator)

	_, err := p.Answer(context.Background(), "how is the garden doing", nil)
	require.NoError(t, err)

	assert.Equal(t, "how is the garden doing", embedder.lastText)
	assert.Nil(t, searcher.lastOpts.DateRange)
	assert.InDelta(t, 0.5, searcher.lastOpts.Threshold, 0.0001)
	assert.Equal(t, 5, searcher.lastOpts.Limit)
}

func TestAnswerQueryThatIsOnlyATemporalPhrase(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{1, 0}}
	searcher := &stubSearcher{}
	generator := &stubGenerator{chunks: []service.GenerationChunk{{Text: "Nothing."}}}
	p := newTestPipeline(embedder, searcher, generator)

	// Stripping "yesterday" leaves nothing; fall back to the raw query so
	// the embedder never sees empty text.
	_, err := p.Answer(context.Background(), "yesterday", nil)
	require.NoError(t, err)
	assert.Equal(t, "yesterday", embedder.lastText)
}

func TestAnswerNoMatchingRecords(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{1, 0}}
	searcher := &stubSearcher{}
	generator := &stubGenerator{chunks: []service.GenerationChunk{{Text: "I found nothing."}}}
	p := newTestPipeline(embedder, searcher, generator)

	got, err := p.Answer(context.Background(), "anything about xyzzy", nil)
	require.NoError(t, err)
	assert.Equal(t, "I found nothing.", got)
	assert.Contains(t, generator.lastPrompt, "No matching records were found.")
}

func TestAnswerKeepsPartialTextOnStreamFailure(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{1, 0}}
	searcher := &stubSearcher{}
	generator := &stubGenerator{chunks: []service.GenerationChunk{
		{Text: "The garden was "},
		{Err: errors.New("connection reset")},
	}}
	p := newTestPipeline(embedder, searcher, generator)

	got, err := p.Answer(context.Background(), "how is the garden", nil)
	require.NoError(t, err)
	assert.Equal(t, "The garden was ", got)
}

func TestAnswerEmbedderFailure(t *testing.T) {
	p := newTestPipeline(
		&stubEmbedder{err: errors.New("ollama down")},
		&stubSearcher{},
		&stubGenerator{},
	)

	_, err := p.Answer(context.Background(), "how is the garden", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRetrieval)
	assert.NotEmpty(t, common.UserMessage(err, ""))
}

func TestAnswerSearchFailure(t *testing.T) {
	p := newTestPipeline(
		&stubEmbedder{vector: []float32{1, 0}},
		&stubSearcher{err: errors.New("disk error")},
		&stubGenerator{},
	)

	_, err := p.Answer(context.Background(), "how is the garden", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRetrieval)
}

func TestAnswerGeneratorFailure(t *testing.T) {
	p := newTestPipeline(
		&stubEmbedder{vector: []float32{1, 0}},
		&stubSearcher{},
		&stubGenerator{err: errors.New("rate limited")},
	)

	_, err := p.Answer(context.Background(), "how is the garden", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRetrieval)
}

func TestDocumentHeaders(t *testing.T) {
	due := time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)
	entry := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		doc  model.RetrievedDocument
		want string
	}{
		{
			name: "task with due date",
			doc: model.RetrievedDocument{Document: model.Document{
				Type: model.DocumentTask, Title: "Call dentist", DueDate: &due,
			}},
			want: "[Task: Call dentist, due Mar 13, 2025]",
		},
		{
			name: "task without due date",
			doc: model.RetrievedDocument{Document: model.Document{
				Type: model.DocumentTask, Title: "Call dentist",
			}},
			want: "[Task: Call dentist]",
		},
		{
			name: "journal entry",
			doc: model.RetrievedDocument{Document: model.Document{
				Type: model.DocumentJournal, EntryDate: &entry,
			}},
			want: "[Journal entry, Mar 11, 2025]",
		},
		{
			name: "titled note",
			doc: model.RetrievedDocument{Document: model.Document{
				Type: model.DocumentNote, Title: "Garden",
			}},
			want: "[Note: Garden]",
		},
		{
			name: "untitled note",
			doc: model.RetrievedDocument{Document: model.Document{
				Type: model.DocumentNote,
			}},
			want: "[Note]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, documentHeader(tt.doc))
		})
	}
}

func TestAssembleContextJoinsWithBlankLines(t *testing.T) {
	docs := []model.RetrievedDocument{
		{Document: model.Document{Type: model.DocumentNote, Title: "A", Content: "first"}},
		{Document: model.Document{Type: model.DocumentNote, Title: "B", Content: "second"}},
	}

	got := assembleContext(docs)
	assert.Equal(t, "[Note: A]\nfirst\n\n[Note: B]\nsecond", got)
}
