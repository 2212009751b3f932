//go:build sqlite_vec && cgo

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/keeperhq/keeper/internal/model"
	"github.com/keeperhq/keeper/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run the vec-extension query path instead of the Go scan.
// Build with -tags sqlite_vec to include them.

func TestVecExtensionActive(t *testing.T) {
	assert.True(t, vecExtensionLoaded)
}

func TestSearchSimilarVecOrdersByCosine(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	near := testDocument(t, store, model.DocumentNote, "Garden", "planted tomatoes", []float32{1, 0, 0})
	mid := testDocument(t, store, model.DocumentNote, "Kitchen", "fixed the sink", []float32{0.7, 0.7, 0})
	testDocument(t, store, model.DocumentNote, "Unrelated", "tax paperwork", []float32{0, 0, 1})

	results, err := store.SearchSimilar(ctx, []float32{1, 0, 0}, service.SearchOptions{
		Threshold: 0.5,
		Limit:     5,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, near.ID, results[0].ID)
	assert.Equal(t, mid.ID, results[1].ID)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
	assert.InDelta(t, 1.0, results[0].Similarity, 0.001)
}

func TestSearchSimilarVecDateRange(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()

	monday := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	friday := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	inRange := model.Document{
		ID:        uuid.NewString(),
		Type:      model.DocumentJournal,
		Content:   "long walk in the rain",
		EntryDate: &monday,
	}
	require.NoError(t, store.IndexDocument(ctx, inRange, []float32{1, 0, 0}))

	outOfRange := model.Document{
		ID:        uuid.NewString(),
		Type:      model.DocumentJournal,
		Content:   "quiet friday",
		EntryDate: &friday,
	}
	require.NoError(t, store.IndexDocument(ctx, outOfRange, []float32{1, 0, 0}))

	// A task with only a due date falls back to it for range filtering.
	due := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	dueTask := model.Document{
		ID:      uuid.NewString(),
		Type:    model.DocumentTask,
		Title:   "Water plants",
		Content: "water the plants",
		DueDate: &due,
	}
	require.NoError(t, store.IndexDocument(ctx, dueTask, []float32{1, 0, 0}))

	start := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 12, 23, 59, 59, 0, time.UTC)
	results, err := store.SearchSimilar(ctx, []float32{1, 0, 0}, service.SearchOptions{
		Threshold: 0.3,
		Limit:     10,
		DateRange: &service.DateRange{Start: start, End: end},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	ids := []string{results[0].ID, results[1].ID}
	assert.Contains(t, ids, inRange.ID)
	assert.Contains(t, ids, dueTask.ID)
	assert.NotContains(t, ids, outOfRange.ID)
}

func TestSearchSimilarVecThreshold(t *testing.T) {
	store := testStorage(t)

	testDocument(t, store, model.DocumentNote, "Garden", "planted tomatoes", []float32{0, 1, 0})

	results, err := store.SearchSimilar(context.Background(), []float32{1, 0, 0}, service.SearchOptions{
		Threshold: 0.3,
		Limit:     5,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}
