package mapper

import (
	"knowledge-hub-be/internal/entity"
	"knowledge-hub-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.KnowledgeNote) *entity.Note {
	if n == nil {
		return nil
	}

	var embedding []float32
	if n.Embedding != nil {
		embedding = n.Embedding.Slice()
	}

	tags := []string(n.Tags)
	if tags == nil {
		tags = []string{}
	}

	return &entity.Note{
		Id:        n.Id,
		Content:   n.Content,
		Category:  n.Category,
		Tags:      tags,
		Embedding: embedding,
		Status:    entity.NoteStatus(n.Status),
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		IsDeleted: n.IsDeleted,
		DeletedAt: n.DeletedAt,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.KnowledgeNote {
	if n == nil {
		return nil
	}

	status := string(n.Status)
	if status == "" {
		status = string(entity.NoteStatusPending)
	}

	return &model.KnowledgeNote{
		Id:        n.Id,
		Content:   n.Content,
		Category:  n.Category,
		Tags:      m.ToTags(n.Tags),
		Embedding: m.ToVector(n.Embedding),
		Status:    status,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		IsDeleted: n.IsDeleted,
		DeletedAt: n.DeletedAt,
	}
}

// ToVector maps an empty embedding to SQL NULL.
func (m *NoteMapper) ToVector(values []float32) *pgvector.Vector {
	if len(values) == 0 {
		return nil
	}
	v := pgvector.NewVector(values)
	return &v
}

func (m *NoteMapper) ToTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (m *NoteMapper) ToEntities(notes []*model.KnowledgeNote) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}
