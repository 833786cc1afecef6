package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []NoteStatus{NoteStatusPending, NoteStatusProcessing, NoteStatusCompleted, NoteStatusFailed}
	allowed := map[[2]NoteStatus]bool{
		{NoteStatusPending, NoteStatusProcessing}:    true,
		{NoteStatusProcessing, NoteStatusProcessing}: true,
		{NoteStatusProcessing, NoteStatusCompleted}:  true,
		{NoteStatusProcessing, NoteStatusFailed}:     true,
		{NoteStatusCompleted, NoteStatusCompleted}:   true,
		{NoteStatusFailed, NoteStatusFailed}:         true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]NoteStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestAllowedFrom_ReturnsCopy(t *testing.T) {
	from := NoteStatusCompleted.AllowedFrom()
	assert.ElementsMatch(t, []NoteStatus{NoteStatusProcessing, NoteStatusCompleted}, from)

	from[0] = NoteStatusPending
	assert.False(t, CanTransition(NoteStatusPending, NoteStatusCompleted))
	assert.Empty(t, NoteStatusPending.AllowedFrom())
}

func TestNoteStatus_IsValid(t *testing.T) {
	assert.True(t, NoteStatusFailed.IsValid())
	assert.False(t, NoteStatus("archived").IsValid())
	assert.True(t, NoteStatusCompleted.IsTerminal())
	assert.False(t, NoteStatusProcessing.IsTerminal())
}

func TestNote_Helpers(t *testing.T) {
	n := &Note{}
	assert.Equal(t, "Uncategorized", n.CategoryOrDefault())
	assert.False(t, n.HasEmbedding())

	category := "Work"
	n.Category = &category
	n.Embedding = []float32{1}
	assert.Equal(t, "Work", n.CategoryOrDefault())
	assert.True(t, n.HasEmbedding())
}
