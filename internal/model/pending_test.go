package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingActionFillOrder(t *testing.T) {
	p := NewPendingAction("transfer_funds", nil, []string{"from_account", "to_account", "amount"})

	assert.Equal(t, "from_account", p.NextField())
	assert.False(t, p.Complete())

	p.Fill("checking")
	assert.Equal(t, "checking", p.Params["from_account"])
	assert.Equal(t, "to_account", p.NextField())

	p.Fill("savings")
	p.Fill("50")
	assert.True(t, p.Complete())
	assert.Equal(t, "", p.NextField())

	// Filling past completion is a no-op.
	p.Fill("extra")
	assert.Len(t, p.Params, 3)
}

func TestNewPendingActionCopiesInputs(t *testing.T) {
	params := map[string]string{"title": "Garden"}
	missing := []string{"content"}
	p := NewPendingAction("create_note", params, missing)

	params["title"] = "mutated"
	missing[0] = "mutated"

	assert.Equal(t, "Garden", p.Params["title"])
	assert.Equal(t, "content", p.MissingFields[0])
}

func TestGoalProgress(t *testing.T) {
	assert.InDelta(t, 30, Goal{TargetAmount: 4000, CurrentAmount: 1200}.Progress(), 0.001)
	assert.InDelta(t, 100, Goal{TargetAmount: 100, CurrentAmount: 250}.Progress(), 0.001)
	assert.Zero(t, Goal{TargetAmount: 0, CurrentAmount: 50}.Progress())
}
