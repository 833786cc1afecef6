// Package specification holds composable query filters for the note repository.
package specification

import "gorm.io/gorm"

// Specification narrows or orders a note query. Specs are applied in the order given.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

type ByID struct {
	ID uint
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// OrderBy sorts on a column name. Field must be a trusted identifier, never user input.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	if s.Desc {
		return db.Order(s.Field + " DESC")
	}
	return db.Order(s.Field)
}
