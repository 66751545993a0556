package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// UserCollection is a collection the user has acquired
type UserCollection struct {
	ID           int64
	CollectionID string
	Public       bool
	Archived     bool
	AcquiredAt   time.Time
}

const userCollectionColumns = `id, collection_id, is_public, is_archived, acquired_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserCollection(row rowScanner) (*UserCollection, error) {
	var (
		uc       UserCollection
		acquired string
	)
	if err := row.Scan(&uc.ID, &uc.CollectionID, &uc.Public, &uc.Archived, &acquired); err != nil {
		return nil, err
	}
	t, err := parseTime(acquired)
	if err != nil {
		return nil, err
	}
	uc.AcquiredAt = t
	return &uc, nil
}

// Acquire adds a collection to the user's library
func (s *Store) Acquire(ctx context.Context, collectionID string, public bool) (*UserCollection, error) {
	var uc *UserCollection
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM user_collections WHERE collection_id = ?`, collectionID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to look up collection: %w", err)
		}
		if exists > 0 {
			return fmt.Errorf("%s: %w", collectionID, ErrAlreadyAcquired)
		}

		acquiredAt := s.now()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO user_collections (collection_id, is_public, is_archived, acquired_at) VALUES (?, ?, 0, ?)`,
			collectionID, public, formatTime(acquiredAt))
		if err != nil {
			return fmt.Errorf("failed to acquire collection: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read collection id: %w", err)
		}

		uc = &UserCollection{
			ID:           id,
			CollectionID: collectionID,
			Public:       public,
			AcquiredAt:   acquiredAt.UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Acquired collection", zap.String("collection", collectionID), zap.Int64("id", uc.ID))
	return uc, nil
}

// Get returns a user collection by its ID
func (s *Store) Get(ctx context.Context, id int64) (*UserCollection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userCollectionColumns+` FROM user_collections WHERE id = ?`, id)
	uc, err := scanUserCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user collection %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user collection: %w", err)
	}
	return uc, nil
}

// FindByCollection returns the user's copy of a library collection
func (s *Store) FindByCollection(ctx context.Context, collectionID string) (*UserCollection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userCollectionColumns+` FROM user_collections WHERE collection_id = ?`, collectionID)
	uc, err := scanUserCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection %s: %w", collectionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user collection: %w", err)
	}
	return uc, nil
}

// List returns the user's active or archived collections, oldest first
func (s *Store) List(ctx context.Context, archived bool) ([]*UserCollection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userCollectionColumns+` FROM user_collections WHERE is_archived = ? ORDER BY id`, archived)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var out []*UserCollection
	for rows.Next() {
		uc, err := scanUserCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read collection: %w", err)
		}
		out = append(out, uc)
	}
	return out, rows.Err()
}

// SetArchived archives or restores a user collection
func (s *Store) SetArchived(ctx context.Context, id int64, archived bool) error {
	return s.update(ctx, id, `UPDATE user_collections SET is_archived = ? WHERE id = ?`, archived, id)
}

// TogglePrivacy flips a user collection between public and private and
// returns the new visibility
func (s *Store) TogglePrivacy(ctx context.Context, id int64) (bool, error) {
	uc, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	public := !uc.Public
	if err := s.update(ctx, id, `UPDATE user_collections SET is_public = ? WHERE id = ?`, public, id); err != nil {
		return false, err
	}
	return public, nil
}

// Reset clears a collection's completed cards and milestones. The activity
// journal is kept.
func (s *Store) Reset(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM completed_cards WHERE user_collection_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear completed cards: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM achievements WHERE user_collection_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear achievements: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Reset collection", zap.Int64("id", id))
	return nil
}

func (s *Store) update(ctx context.Context, id int64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user collection: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user collection: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user collection %d: %w", id, ErrNotFound)
	}
	return nil
}
