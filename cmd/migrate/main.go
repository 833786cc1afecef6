package main

import (
	"log"
	"os"

	"knowledge-hub-be/internal/config"
	"knowledge-hub-be/internal/migration"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	if cfg.Database.Connection == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Migrating knowledge_notes...")
	if err := migration.Run(db, logger.NewZapLogger("", false)); err != nil {
		color.Red("Migration failed: %v", err)
		os.Exit(1)
	}
	color.Green("✅ Migration complete")
}
