package specification

import (
	"time"

	"knowledge-hub-be/internal/entity"

	"gorm.io/gorm"
)

// Active keeps notes that are not in the recycle bin
type Active struct{}

func (s Active) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// InBin keeps notes that sit in the recycle bin
type InBin struct{}

func (s InBin) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", true)
}

// DeletedBefore keeps soft-deleted notes whose deleted_at is older than Cutoff
type DeletedBefore struct {
	Cutoff time.Time
}

func (s DeletedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ? AND deleted_at < ?", true, s.Cutoff)
}

type ByStatuses struct {
	Statuses []entity.NoteStatus
}

func (s ByStatuses) Apply(db *gorm.DB) *gorm.DB {
	values := make([]string, len(s.Statuses))
	for i, st := range s.Statuses {
		values[i] = string(st)
	}
	return db.Where("status IN ?", values)
}

// UpdatedBefore is used to find notes that have been sitting in a non-terminal status too long
type UpdatedBefore struct {
	Cutoff time.Time
}

func (s UpdatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("updated_at < ?", s.Cutoff)
}
