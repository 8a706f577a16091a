package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/windoze95/shopcompare-api/internal/config"
	"github.com/windoze95/shopcompare-api/internal/logger"
	"github.com/windoze95/shopcompare-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// New creates a new Postgres connection for the history store.
func New(cfg *config.Config) (*gorm.DB, error) {
	return connectToDatabaseWithRetry(cfg.EnvVars.DatabaseUrl, time.Minute)
}

// connectToDatabaseWithRetry connects to the database and retries until
// the deadline passes.
func connectToDatabaseWithRetry(databaseURL string, deadline time.Duration) (*gorm.DB, error) {
	logger.Get().Info("connecting to database")
	var database *gorm.DB
	var err error

	start := time.Now()
	for {
		database, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err == nil {
			break
		}
		if time.Since(start) > deadline {
			return nil, fmt.Errorf("could not connect to database after %s: %w", deadline, err)
		}
		logger.Get().Warn("could not connect to database, retrying...", zap.Error(err))
		time.Sleep(5 * time.Second)
	}

	if err := database.AutoMigrate(&models.SearchHistory{}); err != nil {
		return nil, fmt.Errorf("failed to migrate search history: %w", err)
	}

	return database, nil
}

// OpenSQLite opens a SQLite database at path and creates the history table.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises writes.
	database.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := database.Exec(pragma); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := database.Exec(sqliteSchema); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	return database, nil
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS search_histories (
	namespace  TEXT PRIMARY KEY,
	terms      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`
