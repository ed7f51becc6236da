package database

import (
	"fmt"

	"price-table/internal/config"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open opens the embedded SQLite database backing the key/value store.
// The file is created on first use; ":memory:" yields a throwaway
// in-memory database.
func Open(cfg config.StorageConfig, logger zerolog.Logger) (*gorm.DB, error) {
	logger.Info().
		Str("path", cfg.Path).
		Msg("opening storage database")

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage database: %w", err)
	}

	// Verify the database file is usable
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access storage database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping storage database: %w", err)
	}

	logger.Info().Msg("storage database opened successfully")

	return db, nil
}
