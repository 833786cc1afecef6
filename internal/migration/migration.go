// Package migration owns the knowledge_notes schema.
package migration

import (
	"errors"
	"fmt"

	"knowledge-hub-be/internal/model"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// duplicateColumn is the Postgres SQLSTATE for "column already exists".
const duplicateColumn = "42701"

const module = "Migration"

// Run prepares extensions, adds the status column to tables created before it existed and
// brings knowledge_notes up to date with the model.
func Run(db *gorm.DB, log logger.ILogger) error {
	if database.IsPostgres(db) {
		log.Info(module, "Enabling pgvector extension", nil)
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
			log.Warn(module, "Failed to enable vector extension, continuing", map[string]interface{}{"error": err.Error()})
		}
	}

	if db.Migrator().HasTable(&model.KnowledgeNote{}) {
		if err := AddStatusColumn(db); err != nil {
			return err
		}
		log.Info(module, "Status column present", nil)
	}

	if err := db.AutoMigrate(&model.KnowledgeNote{}); err != nil {
		return fmt.Errorf("auto migrate knowledge_notes: %w", err)
	}
	log.Info(module, "knowledge_notes migrated", nil)
	return nil
}

// AddStatusColumn is the additive change that introduced the enrichment state machine.
// Legacy rows get 'pending' and are picked up again by the stale-note sweep.
func AddStatusColumn(db *gorm.DB) error {
	if db.Migrator().HasColumn(&model.KnowledgeNote{}, "status") {
		return nil
	}

	err := db.Exec(`ALTER TABLE knowledge_notes ADD COLUMN status VARCHAR(20) DEFAULT 'pending'`).Error
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == duplicateColumn {
		return nil
	}
	return fmt.Errorf("add status column: %w", err)
}
