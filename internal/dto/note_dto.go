package dto

import (
	"time"
)

type CreateNoteRequest struct {
	Content string `json:"content" validate:"required"`
}

type CreateNoteResponse struct {
	Id           uint   `json:"id"`
	Status       string `json:"status"`
	DispatchMode string `json:"dispatch_mode"`
}

type NoteResponse struct {
	Id           uint       `json:"id"`
	Content      string     `json:"content"`
	Category     string     `json:"category"`
	Tags         []string   `json:"tags"`
	Status       string     `json:"status"`
	HasEmbedding bool       `json:"has_embedding"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	IsDeleted    bool       `json:"is_deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`

	RelevanceScore *float64 `json:"relevance_score,omitempty"` // only set for semantic search
}

type ListNotesRequest struct {
	Query string `query:"q"`
	TopK  int    `query:"top_k" validate:"gte=0,lte=100"`
}

// IdsRequest is the body of every bulk recycle-bin call.
type IdsRequest struct {
	Ids []uint `json:"ids" validate:"required,min=1,dive,gt=0"`
}

type BulkResult struct {
	Affected int64 `json:"affected"`
}

type SystemStatusResponse struct {
	Provider          string         `json:"provider"`
	SupportsEmbedding bool           `json:"supports_embedding"`
	Dimensions        int            `json:"dimensions"`
	DispatchMode      string         `json:"dispatch_mode"`
	RetentionDays     int            `json:"retention_days"`
	NotesByStatus     map[string]int `json:"notes_by_status"`
	DeletedNotes      int            `json:"deleted_notes"`
}

type SweepResult struct {
	Purged        int64 `json:"purged"`
	Redispatched  int   `json:"redispatched"`
	RetentionDays int   `json:"retention_days"`
}
