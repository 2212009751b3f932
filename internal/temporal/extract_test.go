package temporal

import (
	"testing"
	"time"

	"github.com/keeperhq/keeper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, March 12 2025, mid-afternoon.
var wednesday = time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)

func TestExtractNoPhrase(t *testing.T) {
	intent := Extract("how much is in savings", wednesday)

	assert.Equal(t, model.TemporalNone, intent.Type)
	assert.Nil(t, intent.Start)
	assert.Nil(t, intent.End)
	assert.Equal(t, "how much is in savings", intent.CleanedQuery)
	assert.Equal(t, intent.OriginalQuery, intent.CleanedQuery)
}

func TestExtractDayPhrases(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantType  model.TemporalType
		wantDay   time.Time
		wantClean string
	}{
		{
			name:      "today",
			query:     "what did I do today",
			wantType:  model.TemporalToday,
			wantDay:   wednesday,
			wantClean: "what did I do",
		},
		{
			name:      "tonight counts as today",
			query:     "tasks for tonight",
			wantType:  model.TemporalToday,
			wantDay:   wednesday,
			wantClean: "tasks for",
		},
		{
			name:      "tomorrow",
			query:     "remind me tomorrow",
			wantType:  model.TemporalTomorrow,
			wantDay:   wednesday.AddDate(0, 0, 1),
			wantClean: "remind me",
		},
		{
			name:      "yesterday mid-sentence",
			query:     "notes from yesterday about the garden",
			wantType:  model.TemporalYesterday,
			wantDay:   wednesday.AddDate(0, 0, -1),
			wantClean: "notes from about the garden",
		},
		{
			name:      "case insensitive",
			query:     "what happened YESTERDAY",
			wantType:  model.TemporalYesterday,
			wantDay:   wednesday.AddDate(0, 0, -1),
			wantClean: "what happened",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := Extract(tt.query, wednesday)

			assert.Equal(t, tt.wantType, intent.Type)
			assert.Equal(t, tt.wantClean, intent.CleanedQuery)
			assert.Equal(t, tt.query, intent.OriginalQuery)

			require.NotNil(t, intent.Start)
			require.NotNil(t, intent.End)
			assert.Equal(t, time.Date(tt.wantDay.Year(), tt.wantDay.Month(), tt.wantDay.Day(), 0, 0, 0, 0, time.UTC), *intent.Start)
			assert.Equal(t, 23, intent.End.Hour())
			assert.Equal(t, 59, intent.End.Minute())
			assert.Equal(t, tt.wantDay.Day(), intent.End.Day())
		})
	}
}

func TestExtractWeekRanges(t *testing.T) {
	// The week containing Wednesday March 12 runs Sunday March 9 through
	// Saturday March 15.
	intent := Extract("what did I journal this week", wednesday)

	require.Equal(t, model.TemporalThisWeek, intent.Type)
	require.NotNil(t, intent.Start)
	require.NotNil(t, intent.End)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), *intent.Start)
	assert.Equal(t, 15, intent.End.Day())
	assert.Equal(t, time.Sunday, intent.Start.Weekday())
	assert.Equal(t, time.Saturday, intent.End.Weekday())
	assert.Equal(t, "what did I journal", intent.CleanedQuery)

	next := Extract("plans for next week", wednesday)
	require.NotNil(t, next.Start)
	assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), *next.Start)

	last := Extract("spending last week", wednesday)
	require.NotNil(t, last.Start)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), *last.Start)
}

func TestExtractMonthRollover(t *testing.T) {
	december := time.Date(2025, 12, 5, 9, 0, 0, 0, time.UTC)

	next := Extract("budget for next month", december)
	require.Equal(t, model.TemporalNextMonth, next.Type)
	require.NotNil(t, next.Start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *next.Start)
	assert.Equal(t, 31, next.End.Day())

	january := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	last := Extract("spending last month", january)
	require.Equal(t, model.TemporalLastMonth, last.Type)
	require.NotNil(t, last.Start)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), *last.Start)
	assert.Equal(t, 31, last.End.Day())
}

func TestExtractLeapFebruary(t *testing.T) {
	march := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	intent := Extract("what happened last month", march)
	require.NotNil(t, intent.End)
	assert.Equal(t, 29, intent.End.Day())
	assert.Equal(t, time.February, intent.End.Month())
}

func TestExtractFirstMatchWins(t *testing.T) {
	// "today" precedes "tomorrow" in the pattern order, regardless of
	// position in the sentence.
	intent := Extract("move tomorrow's tasks to today", wednesday)

	assert.Equal(t, model.TemporalToday, intent.Type)
}

func TestExtractWordBoundary(t *testing.T) {
	// "todays" should not match the "today" pattern as a whole word, but
	// "tomorrow's" still matches on the word "tomorrow".
	intent := Extract("add to yesterdays notes", wednesday)
	assert.Equal(t, model.TemporalNone, intent.Type)

	possessive := Extract("tomorrow's agenda", wednesday)
	assert.Equal(t, model.TemporalTomorrow, possessive.Type)
}

func TestExtractDeterministic(t *testing.T) {
	first := Extract("tasks due this month", wednesday)
	second := Extract("tasks due this month", wednesday)

	assert.Equal(t, first, second)
}
