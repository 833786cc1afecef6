package entity

import (
	"time"
)

type NoteStatus string

const (
	NoteStatusPending    NoteStatus = "pending"
	NoteStatusProcessing NoteStatus = "processing"
	NoteStatusCompleted  NoteStatus = "completed"
	NoteStatusFailed     NoteStatus = "failed"
)

// noteTransitions lists, per target status, the statuses a note may move from.
// Re-entering processing covers a worker that crashed mid-dispatch; completed -> completed
// covers re-enrichment of an already processed note. Nothing may move back to pending.
var noteTransitions = map[NoteStatus][]NoteStatus{
	NoteStatusProcessing: {NoteStatusPending, NoteStatusProcessing},
	NoteStatusCompleted:  {NoteStatusProcessing, NoteStatusCompleted},
	NoteStatusFailed:     {NoteStatusProcessing, NoteStatusFailed},
}

func (s NoteStatus) IsValid() bool {
	switch s {
	case NoteStatusPending, NoteStatusProcessing, NoteStatusCompleted, NoteStatusFailed:
		return true
	}
	return false
}

func (s NoteStatus) IsTerminal() bool {
	return s == NoteStatusCompleted || s == NoteStatusFailed
}

// AllowedFrom returns the statuses that may legally transition to s.
func (s NoteStatus) AllowedFrom() []NoteStatus {
	from := noteTransitions[s]
	out := make([]NoteStatus, len(from))
	copy(out, from)
	return out
}

// CanTransition reports whether a note in status from may be moved to status to.
func CanTransition(from, to NoteStatus) bool {
	for _, s := range noteTransitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

type Note struct {
	Id        uint
	Content   string
	Category  *string
	Tags      []string
	Embedding []float32
	Status    NoteStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	IsDeleted bool
	DeletedAt *time.Time
}

// HasEmbedding reports whether the note carries a usable vector.
func (n *Note) HasEmbedding() bool {
	return len(n.Embedding) > 0
}

// CategoryOrDefault is what the listing shows for notes that have not been classified yet.
func (n *Note) CategoryOrDefault() string {
	if n.Category == nil || *n.Category == "" {
		return "Uncategorized"
	}
	return *n.Category
}

// Enrichment is the output of one enrichment run.
type Enrichment struct {
	Category          string
	Tags              []string
	Embedding         []float32
	FallbackCategory  bool
	FallbackEmbedding bool
}

type ClassificationResult struct {
	Category string
	Tags     []string
	Fallback bool
}

type EmbeddingResult struct {
	Vector   []float32
	Fallback bool
}
