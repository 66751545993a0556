// Package store persists collection progress in a local SQLite database:
// acquired collections, completed cards, earned milestones and the activity
// journal.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a user collection does not exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyAcquired is returned when a collection is acquired twice
	ErrAlreadyAcquired = errors.New("collection already acquired")
	// ErrAlreadyCompleted is returned when a card is completed twice
	ErrAlreadyCompleted = errors.New("card already completed")
)

// Fixed-width UTC timestamps sort correctly as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS user_collections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	collection_id TEXT NOT NULL UNIQUE,
	is_public INTEGER NOT NULL DEFAULT 1,
	is_archived INTEGER NOT NULL DEFAULT 0,
	acquired_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS completed_cards (
	user_collection_id INTEGER NOT NULL REFERENCES user_collections(id) ON DELETE CASCADE,
	card_id TEXT NOT NULL,
	completed_at TEXT NOT NULL,
	comment TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (user_collection_id, card_id)
);

CREATE TABLE IF NOT EXISTS achievements (
	user_collection_id INTEGER NOT NULL REFERENCES user_collections(id) ON DELETE CASCADE,
	percentage INTEGER NOT NULL,
	earned_at TEXT NOT NULL,
	PRIMARY KEY (user_collection_id, percentage)
);

CREATE TABLE IF NOT EXISTS activities (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	user_collection_id INTEGER NOT NULL REFERENCES user_collections(id) ON DELETE CASCADE,
	collection_id TEXT NOT NULL,
	card_id TEXT NOT NULL DEFAULT '',
	card_title TEXT NOT NULL DEFAULT '',
	comment TEXT NOT NULL DEFAULT '',
	percentage INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activities_created ON activities(created_at);
`

// Store is the progress database
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the database at path. A nil logger
// disables logging.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// The pragma is part of the DSN so every new connection enforces
	// foreign keys.
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger, now: time.Now}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("Opened progress database", zap.String("path", path))
	return s, nil
}

func (s *Store) initialize() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, committing when it returns nil
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t, nil
}
