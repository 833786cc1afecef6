package scope

import "gorm.io/gorm"

// OnlyActive hides notes that sit in the recycle bin.
func OnlyActive(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// OnlyDeleted returns only notes in the recycle bin.
func OnlyDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", true)
}
