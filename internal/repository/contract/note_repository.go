package contract

import (
	"context"

	"knowledge-hub-be/internal/entity"
	"knowledge-hub-be/internal/repository/specification"
)

// NoteRepository is the Note Store. Unknown ids never raise: single-note methods return a
// nil note, batch methods touch only the ids that exist.
type NoteRepository interface {
	Create(ctx context.Context, content string) (*entity.Note, error)
	GetById(ctx context.Context, id uint) (*entity.Note, error)
	SetStatus(ctx context.Context, id uint, status entity.NoteStatus) (*entity.Note, error)
	ApplyEnrichment(ctx context.Context, id uint, category *string, tags []string, embedding []float32) (*entity.Note, error)

	ListActive(ctx context.Context) ([]*entity.Note, error)
	ListDeleted(ctx context.Context) ([]*entity.Note, error)

	SoftDelete(ctx context.Context, ids []uint) (int64, error)
	Restore(ctx context.Context, ids []uint) (int64, error)
	HardDelete(ctx context.Context, ids []uint) (int64, error)
	EmptyBin(ctx context.Context) (int64, error)
	PurgeExpired(ctx context.Context, retentionDays int) (int64, error)

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
