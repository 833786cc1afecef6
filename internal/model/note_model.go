package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type KnowledgeNote struct {
	Id        uint                        `gorm:"primaryKey;autoIncrement"`
	Content   string                      `gorm:"type:text;not null"`
	Category  *string                     `gorm:"type:varchar(50)"`
	Tags      datatypes.JSONSlice[string]
	Embedding *pgvector.Vector            `gorm:"type:vector"` // dimensionality follows the active provider
	Status    string                      `gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt time.Time                   `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime"`
	IsDeleted bool                        `gorm:"not null;default:false;index"`
	DeletedAt *time.Time                  `gorm:"index"`
}

func (KnowledgeNote) TableName() string {
	return "knowledge_notes"
}
