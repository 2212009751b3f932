package resolve

import (
	"testing"

	"github.com/keeperhq/keeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accounts = []Candidate{
	{ID: "a1", Name: "Main Checking"},
	{ID: "a2", Name: "My Savings Account"},
	{ID: "a3", Name: "Travel Card"},
	{ID: "a4", Name: "Wallet Cash"},
}

func TestResolveExactName(t *testing.T) {
	s := NewContainment()

	got, err := s.Resolve("Main Checking", accounts)
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)
}

func TestResolvePartialName(t *testing.T) {
	s := NewContainment()

	tests := []struct {
		query  string
		wantID string
	}{
		{"savings", "a2"},
		{"my savings", "a2"},
		{"savings account", "a2"},
		{"checking", "a1"},
		{"the checking account", "a1"},
		{"travel", "a3"},
		{"CHECKING", "a1"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Resolve(tt.query, accounts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestResolveQueryLongerThanCandidate(t *testing.T) {
	s := NewContainment()

	// Containment runs both directions: a verbose query still lands on a
	// short stored name.
	got, err := s.Resolve("my main checking account", []Candidate{
		{ID: "x", Name: "Checking"},
	})
	require.NoError(t, err)
	assert.Equal(t, "x", got.ID)
}

func TestResolveExactBeatsContainment(t *testing.T) {
	s := NewContainment()

	got, err := s.Resolve("savings", []Candidate{
		{ID: "long", Name: "Old Savings Backup"},
		{ID: "exact", Name: "Savings"},
	})
	require.NoError(t, err)
	assert.Equal(t, "exact", got.ID)
}

func TestResolveShortestWinsTie(t *testing.T) {
	s := NewContainment()

	got, err := s.Resolve("checking", []Candidate{
		{ID: "long", Name: "Joint Checking Secondary"},
		{ID: "short", Name: "Main Checking"},
	})
	require.NoError(t, err)
	assert.Equal(t, "short", got.ID)
}

func TestResolveNoMatch(t *testing.T) {
	s := NewContainment()

	_, err := s.Resolve("xyz", accounts)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestResolveEmptyAfterNormalize(t *testing.T) {
	s := NewContainment()

	// A query made entirely of stopwords carries no signal.
	_, err := s.Resolve("my account", accounts)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestResolveNoCandidates(t *testing.T) {
	s := NewContainment()

	_, err := s.Resolve("savings", nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "savings", Normalize("My Savings Account"))
	assert.Equal(t, "emergency", Normalize("Emergency Fund"))
	assert.Equal(t, "main checking", Normalize("  Main   CHECKING  "))
	assert.Equal(t, "", Normalize("my account"))
}
