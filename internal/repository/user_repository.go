package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kidtimer/internal/model"
)

const selectUser = `SELECT id, email, password_hash, created_at, updated_at FROM users`

// UserRepository stores accounts. Emails are unique; callers normalize them
// before both writes and lookups.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts user and returns ErrDuplicate when the email or id is
// already taken.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	const insert = `INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, insert,
		user.ID, user.Email, user.PasswordHash,
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt))
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("create user %s: %w", user.Email, ErrDuplicate)
	default:
		return fmt.Errorf("create user: %w", err)
	}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "id", id)
}

// findOne looks a user up by one of the fixed key columns above.
func (r *UserRepository) findOne(ctx context.Context, column, value string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+` WHERE `+column+` = ?`, value)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return user, nil
}

func scanUser(s scanner) (*model.User, error) {
	var (
		user       model.User
		created    string
		lastUpdate string
	)
	err := s.Scan(&user.ID, &user.Email, &user.PasswordHash, &created, &lastUpdate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if user.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("user %s created_at: %w", user.ID, err)
	}
	if user.UpdatedAt, err = parseTime(lastUpdate); err != nil {
		return nil, fmt.Errorf("user %s updated_at: %w", user.ID, err)
	}
	return &user, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
