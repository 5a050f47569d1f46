package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PreferenceRepository stores per-user preference key/value pairs.
type PreferenceRepository struct {
	db *sql.DB
}

func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func (r *PreferenceRepository) Get(ctx context.Context, userID, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(
		ctx,
		`SELECT value FROM user_preferences WHERE user_id = ? AND key = ?`,
		userID,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, nil
}

func (r *PreferenceRepository) Put(ctx context.Context, userID, key, value string) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO user_preferences (user_id, key, value, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, key) DO UPDATE SET
		     value = excluded.value,
		     updated_at = excluded.updated_at`,
		userID,
		key,
		value,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put preference %s: %w", key, err)
	}
	return nil
}
