package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replacement-request-service/internal/model"
)

func TestHistoryNewestFirst(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := &model.ReplacementRequest{
		Status: model.PickupCompleted,
		History: []model.HistoryEntry{
			{Status: model.ReplacementPending, At: t0},
			{Status: model.ReplacementApproved, At: t0.Add(time.Hour)},
			{Status: model.PickupScheduled, At: t0.Add(2 * time.Hour)},
			{Status: model.PickupCompleted, At: t0.Add(2 * time.Hour)},
		},
	}

	got := r.HistoryNewestFirst()
	require.Len(t, got, 4)
	// Entries sharing a timestamp surface in reverse append order, so the
	// latest appended one leads.
	assert.Equal(t, model.PickupCompleted, got[0].Status)
	assert.Equal(t, model.PickupScheduled, got[1].Status)
	assert.Equal(t, model.ReplacementApproved, got[2].Status)
	assert.Equal(t, model.ReplacementPending, got[3].Status)

	// The original slice is untouched.
	assert.Equal(t, model.ReplacementPending, r.History[0].Status)
}

func TestLastEntry(t *testing.T) {
	r := &model.ReplacementRequest{}
	assert.Nil(t, r.LastEntry())

	t0 := time.Now().UTC()
	r.History = []model.HistoryEntry{
		{Status: model.ReplacementPending, At: t0},
		{Status: model.ReplacementApproved, At: t0.Add(time.Minute)},
	}
	require.NotNil(t, r.LastEntry())
	assert.Equal(t, model.ReplacementApproved, r.LastEntry().Status)
}

func TestHasActiveReplacement(t *testing.T) {
	o := &model.Order{OrderID: "O1"}
	assert.False(t, o.HasActiveReplacement())
	o.Replacement = &model.ReplacementRequest{Status: model.ReplacementPending}
	assert.True(t, o.HasActiveReplacement())
}
