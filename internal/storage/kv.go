package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KV is a minimal synchronous key/value store. It is the durable
// substrate the gateway serializes whole collections into.
type KV interface {
	// Get returns the value stored under key. The boolean reports
	// whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the entry at key. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, key string) error
}

// kvEntry is the single-table schema backing the SQLite store.
type kvEntry struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"column:value;not null"`
}

// TableName returns the table name for the kvEntry model.
func (kvEntry) TableName() string {
	return "kv_entries"
}

// sqliteKV implements KV on top of a SQLite database via GORM.
type sqliteKV struct {
	db *gorm.DB
}

// NewSQLiteKV creates a SQLite-backed key/value store, migrating the
// backing table if needed.
func NewSQLiteKV(db *gorm.DB) (KV, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv table: %w", err)
	}
	return &sqliteKV{db: db}, nil
}

// Get returns the value stored under key.
func (s *sqliteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var entry kvEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return entry.Value, true, nil
}

// Set writes value under key, overwriting any previous value.
func (s *sqliteKV) Set(ctx context.Context, key, value string) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&kvEntry{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// Delete removes the entry at key.
func (s *sqliteKV) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&kvEntry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}
