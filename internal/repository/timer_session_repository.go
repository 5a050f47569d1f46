package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kidtimer/internal/model"
)

type TimerSessionRepository struct {
	db *sql.DB
}

func NewTimerSessionRepository(db *sql.DB) *TimerSessionRepository {
	return &TimerSessionRepository{db: db}
}

func (r *TimerSessionRepository) Insert(ctx context.Context, session *model.TimerSession) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO timer_sessions (
			id, user_id, preset_id, preset_label, total_duration,
			time_spent, completed, started_at, ended_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.PresetID,
		session.PresetLabel,
		session.TotalDuration,
		session.TimeSpent,
		session.Completed,
		formatTime(session.StartedAt),
		formatOptionalTime(session.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("insert timer session: %w", err)
	}
	return nil
}

// GetForUser returns ErrNotFound when the session does not exist or belongs
// to another user.
func (r *TimerSessionRepository) GetForUser(ctx context.Context, userID, sessionID string) (*model.TimerSession, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, preset_id, preset_label, total_duration,
		        time_spent, completed, started_at, ended_at
		 FROM timer_sessions
		 WHERE id = ? AND user_id = ?`,
		sessionID,
		userID,
	)
	session, err := scanTimerSession(row)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *TimerSessionRepository) Finish(ctx context.Context, session *model.TimerSession) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE timer_sessions
		 SET time_spent = ?,
		     completed = ?,
		     ended_at = ?
		 WHERE id = ? AND user_id = ?`,
		session.TimeSpent,
		session.Completed,
		formatOptionalTime(session.EndedAt),
		session.ID,
		session.UserID,
	)
	if err != nil {
		return fmt.Errorf("update timer session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update timer session: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TimerSessionRepository) ListForUser(ctx context.Context, userID string, limit int) ([]model.TimerSession, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, user_id, preset_id, preset_label, total_duration,
		        time_spent, completed, started_at, ended_at
		 FROM timer_sessions
		 WHERE user_id = ?
		 ORDER BY started_at DESC
		 LIMIT ?`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list timer sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]model.TimerSession, 0, limit)
	for rows.Next() {
		session, scanErr := scanTimerSession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timer sessions: %w", err)
	}
	return sessions, nil
}

func (r *TimerSessionRepository) SummaryForUser(ctx context.Context, userID string) (model.SessionSummary, error) {
	var summary model.SessionSummary
	err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1), COALESCE(SUM(completed), 0), COALESCE(SUM(time_spent), 0)
		 FROM timer_sessions
		 WHERE user_id = ?`,
		userID,
	).Scan(&summary.Sessions, &summary.Completed, &summary.TimeSpent)
	if err != nil {
		return model.SessionSummary{}, fmt.Errorf("summarize timer sessions: %w", err)
	}
	return summary, nil
}

func scanTimerSession(s scanner) (*model.TimerSession, error) {
	session := model.TimerSession{}
	var startedAt string
	var endedAt sql.NullString
	err := s.Scan(
		&session.ID,
		&session.UserID,
		&session.PresetID,
		&session.PresetLabel,
		&session.TotalDuration,
		&session.TimeSpent,
		&session.Completed,
		&startedAt,
		&endedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan timer session: %w", err)
	}

	parsedStartedAt, err := parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse session started_at: %w", err)
	}
	session.StartedAt = parsedStartedAt

	session.EndedAt, err = parseOptionalTime(endedAt)
	if err != nil {
		return nil, fmt.Errorf("parse session ended_at: %w", err)
	}
	return &session, nil
}
