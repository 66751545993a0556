package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zerei-app/zerei/internal/achievement"
)

// Activity kinds recorded in the journal
const (
	KindCardCompleted = "card_completed"
	KindAchievement   = "achievement"
)

// Completion describes a card the user just finished
type Completion struct {
	CardID    string
	CardTitle string
	At        time.Time
	Comment   string
}

// Achievement is a milestone earned by a user collection
type Achievement struct {
	Percentage int
	EarnedAt   time.Time
}

// Activity is one journal entry
type Activity struct {
	ID               string
	Kind             string
	UserCollectionID int64
	CollectionID     string
	CardID           string
	CardTitle        string
	Comment          string
	Percentage       int
	CreatedAt        time.Time
}

// CompleteCard records a completed card and journals it
func (s *Store) CompleteCard(ctx context.Context, userCollectionID int64, c Completion) error {
	uc, err := s.Get(ctx, userCollectionID)
	if err != nil {
		return err
	}
	if c.At.IsZero() {
		c.At = s.now()
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM completed_cards WHERE user_collection_id = ? AND card_id = ?`,
			userCollectionID, c.CardID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to look up card: %w", err)
		}
		if exists > 0 {
			return fmt.Errorf("%s: %w", c.CardID, ErrAlreadyCompleted)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO completed_cards (user_collection_id, card_id, completed_at, comment) VALUES (?, ?, ?, ?)`,
			userCollectionID, c.CardID, formatTime(c.At), c.Comment)
		if err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}

		return insertActivity(ctx, tx, Activity{
			Kind:             KindCardCompleted,
			UserCollectionID: uc.ID,
			CollectionID:     uc.CollectionID,
			CardID:           c.CardID,
			CardTitle:        c.CardTitle,
			Comment:          c.Comment,
			CreatedAt:        c.At,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Completed card",
		zap.String("collection", uc.CollectionID),
		zap.String("card", c.CardID))
	return nil
}

// CompletedCards returns completion times keyed by card ID
func (s *Store) CompletedCards(ctx context.Context, userCollectionID int64) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT card_id, completed_at FROM completed_cards WHERE user_collection_id = ?`, userCollectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completed cards: %w", err)
	}
	defer rows.Close()

	done := make(map[string]time.Time)
	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("failed to read completed card: %w", err)
		}
		t, err := parseTime(at)
		if err != nil {
			return nil, err
		}
		done[id] = t
	}
	return done, rows.Err()
}

// RecordAchievements stores every milestone reached with completed of total
// cards and returns the ones that are new
func (s *Store) RecordAchievements(ctx context.Context, userCollectionID int64, completed, total int) ([]int, error) {
	uc, err := s.Get(ctx, userCollectionID)
	if err != nil {
		return nil, err
	}

	crossed := achievement.Crossed(completed, total)
	if len(crossed) == 0 {
		return nil, nil
	}

	var fresh []int
	now := s.now()
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		for _, pct := range crossed {
			res, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO achievements (user_collection_id, percentage, earned_at) VALUES (?, ?, ?)`,
				userCollectionID, pct, formatTime(now))
			if err != nil {
				return fmt.Errorf("failed to save achievement: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				continue
			}

			fresh = append(fresh, pct)
			err = insertActivity(ctx, tx, Activity{
				Kind:             KindAchievement,
				UserCollectionID: uc.ID,
				CollectionID:     uc.CollectionID,
				Percentage:       pct,
				CreatedAt:        now,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(fresh) > 0 {
		s.logger.Info("Earned achievements",
			zap.String("collection", uc.CollectionID),
			zap.Ints("percentages", fresh))
	}
	return fresh, nil
}

// Achievements returns the milestones a user collection has earned, lowest first
func (s *Store) Achievements(ctx context.Context, userCollectionID int64) ([]Achievement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT percentage, earned_at FROM achievements WHERE user_collection_id = ? ORDER BY percentage`,
		userCollectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	defer rows.Close()

	var out []Achievement
	for rows.Next() {
		var (
			a  Achievement
			at string
		)
		if err := rows.Scan(&a.Percentage, &at); err != nil {
			return nil, fmt.Errorf("failed to read achievement: %w", err)
		}
		if a.EarnedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Activities returns the most recent journal entries, newest first
func (s *Store) Activities(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, user_collection_id, collection_id, card_id, card_title, comment, percentage, created_at
		FROM activities
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var (
			a  Activity
			at string
		)
		err := rows.Scan(&a.ID, &a.Kind, &a.UserCollectionID, &a.CollectionID,
			&a.CardID, &a.CardTitle, &a.Comment, &a.Percentage, &at)
		if err != nil {
			return nil, fmt.Errorf("failed to read activity: %w", err)
		}
		if a.CreatedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func insertActivity(ctx context.Context, tx *sql.Tx, a Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO activities (id, kind, user_collection_id, collection_id, card_id, card_title, comment, percentage, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Kind, a.UserCollectionID, a.CollectionID, a.CardID, a.CardTitle, a.Comment, a.Percentage,
		formatTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}
