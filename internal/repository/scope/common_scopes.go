package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

func OrderByDeletedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("deleted_at DESC").Order("id DESC")
}
