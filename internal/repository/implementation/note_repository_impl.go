package implementation

import (
	"context"
	"errors"
	"strings"
	"time"

	"knowledge-hub-be/internal/entity"
	"knowledge-hub-be/internal/mapper"
	"knowledge-hub-be/internal/model"
	"knowledge-hub-be/internal/pkg/apperror"
	"knowledge-hub-be/internal/repository/contract"
	"knowledge-hub-be/internal/repository/scope"
	"knowledge-hub-be/internal/repository/specification"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
	now    func() time.Time
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
		now:    time.Now,
	}
}

func (r *NoteRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, content string) (*entity.Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.NewValidationError("content", "must not be empty")
	}

	m := r.mapper.ToModel(&entity.Note{Content: content, Status: entity.NoteStatusPending})
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, apperror.Infrastructure("create note", err)
	}
	return r.mapper.ToEntity(m), nil
}

func (r *NoteRepositoryImpl) GetById(ctx context.Context, id uint) (*entity.Note, error) {
	return r.FindOne(ctx, specification.ByID{ID: id})
}

// SetStatus only moves a note when its current status is a legal predecessor of the target.
// The check and the write are one conditional UPDATE, so two workers racing on the same
// note cannot both push it through an illegal edge.
func (r *NoteRepositoryImpl) SetStatus(ctx context.Context, id uint, status entity.NoteStatus) (*entity.Note, error) {
	if !status.IsValid() {
		return nil, apperror.NewValidationError("status", "unknown status "+string(status))
	}

	allowed := status.AllowedFrom()
	if len(allowed) > 0 {
		from := make([]string, len(allowed))
		for i, s := range allowed {
			from[i] = string(s)
		}

		res := r.db.WithContext(ctx).
			Model(&model.KnowledgeNote{}).
			Where("id = ? AND status IN ?", id, from).
			Updates(map[string]interface{}{
				"status":     string(status),
				"updated_at": r.now(),
			})
		if res.Error != nil {
			return nil, apperror.Infrastructure("set note status", res.Error)
		}
		if res.RowsAffected > 0 {
			return r.GetById(ctx, id)
		}
	}

	note, err := r.GetById(ctx, id)
	if err != nil || note == nil {
		return nil, err
	}
	return note, &apperror.TransitionError{NoteId: id, From: string(note.Status), To: string(status)}
}

func (r *NoteRepositoryImpl) ApplyEnrichment(ctx context.Context, id uint, category *string, tags []string, embedding []float32) (*entity.Note, error) {
	var embeddingValue interface{} = gorm.Expr("NULL")
	if vec := r.mapper.ToVector(embedding); vec != nil {
		embeddingValue = vec
	}

	res := r.db.WithContext(ctx).
		Model(&model.KnowledgeNote{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"category":   category,
			"tags":       datatypes.JSONSlice[string](r.mapper.ToTags(tags)),
			"embedding":  embeddingValue,
			"updated_at": r.now(),
		})
	if res.Error != nil {
		return nil, apperror.Infrastructure("apply enrichment", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetById(ctx, id)
}

func (r *NoteRepositoryImpl) ListActive(ctx context.Context) ([]*entity.Note, error) {
	var models []*model.KnowledgeNote
	if err := r.db.WithContext(ctx).Scopes(scope.OnlyActive, scope.OrderByCreatedDesc).Find(&models).Error; err != nil {
		return nil, apperror.Infrastructure("list active notes", err)
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteRepositoryImpl) ListDeleted(ctx context.Context) ([]*entity.Note, error) {
	var models []*model.KnowledgeNote
	if err := r.db.WithContext(ctx).Scopes(scope.OnlyDeleted, scope.OrderByDeletedDesc).Find(&models).Error; err != nil {
		return nil, apperror.Infrastructure("list deleted notes", err)
	}
	return r.mapper.ToEntities(models), nil
}

// SoftDelete only touches active notes so deleted_at keeps the original deletion time.
func (r *NoteRepositoryImpl) SoftDelete(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	now := r.now()
	res := r.db.WithContext(ctx).
		Model(&model.KnowledgeNote{}).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, apperror.Infrastructure("soft delete notes", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *NoteRepositoryImpl) Restore(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.KnowledgeNote{}).
		Where("id IN ? AND is_deleted = ?", ids, true).
		Updates(map[string]interface{}{
			"is_deleted": false,
			"deleted_at": gorm.Expr("NULL"),
			"updated_at": r.now(),
		})
	if res.Error != nil {
		return 0, apperror.Infrastructure("restore notes", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *NoteRepositoryImpl) HardDelete(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.KnowledgeNote{})
	if res.Error != nil {
		return 0, apperror.Infrastructure("hard delete notes", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *NoteRepositoryImpl) EmptyBin(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Scopes(scope.OnlyDeleted).Delete(&model.KnowledgeNote{})
	if res.Error != nil {
		return 0, apperror.Infrastructure("empty recycle bin", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *NoteRepositoryImpl) PurgeExpired(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays < 0 {
		return 0, apperror.NewValidationError("retention_days", "must not be negative")
	}
	cutoff := r.now().AddDate(0, 0, -retentionDays)
	query := r.applySpecifications(r.db.WithContext(ctx), specification.DeletedBefore{Cutoff: cutoff})
	res := query.Delete(&model.KnowledgeNote{})
	if res.Error != nil {
		return 0, apperror.Infrastructure("purge expired notes", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *NoteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	var m model.KnowledgeNote
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Infrastructure("find note", err)
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var models []*model.KnowledgeNote
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperror.Infrastructure("find notes", err)
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.KnowledgeNote{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, apperror.Infrastructure("count notes", err)
	}
	return count, nil
}
