package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqliteScheme = "sqlite://"

func getLogger(level logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true, // Don't include params in the SQL log
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

// configureSQLitePool pins SQLite to a single connection. Writers serialize anyway and a
// shared in-memory database disappears once its last connection closes.
func configureSQLitePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return nil
}

// NewGormDBFromDSN opens Postgres, or SQLite when the DSN uses the sqlite:// scheme.
func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	if path, ok := strings.CutPrefix(dsn, sqliteScheme); ok {
		return NewSQLiteDB(path, logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: getLogger(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	return db, nil
}

// NewSQLiteDB opens a SQLite database file. Use ":memory:" or a "file:...?mode=memory" URI
// for throwaway databases.
func NewSQLiteDB(path string, level logger.LogLevel) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: getLogger(level),
	})
	if err != nil {
		return nil, err
	}

	if err := configureSQLitePool(db); err != nil {
		return nil, err
	}

	return db, nil
}

func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}
