package store

import (
	"context"
	"database/sql"
)

// CreateUser inserts a user and returns its ID. Duplicate username or email
// yields ErrUniqueViolation.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`, username, email, passwordHash).Scan(&id)
	if err != nil {
		return 0, translateError(err)
	}
	return id, nil
}

// UserByID fetches a user by primary key.
func (s *Store) UserByID(ctx context.Context, id int64) (*User, error) {
	return s.userBy(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

// UserByUsername fetches a user by its unique username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*User, error) {
	return s.userBy(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1`, username)
}

func (s *Store) userBy(ctx context.Context, query string, arg interface{}) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}
