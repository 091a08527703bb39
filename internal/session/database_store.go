package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// DatabaseStore persists sessions in a relational table, so logins survive
// process restarts without an external cache.
type DatabaseStore struct {
	db       *sql.DB
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// DatabaseConfig holds database session store configuration.
type DatabaseConfig struct {
	DB *sql.DB

	// CleanupInterval is how often expired rows are purged (0 disables the
	// background cleanup).
	CleanupInterval time.Duration
}

// DefaultDatabaseConfig returns the default database store configuration.
func DefaultDatabaseConfig(db *sql.DB) *DatabaseConfig {
	return &DatabaseConfig{
		DB:              db,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewDatabaseStore creates a database session store, creating the sessions
// table when missing.
func NewDatabaseStore(config *DatabaseConfig) (*DatabaseStore, error) {
	store := &DatabaseStore{
		db:       config.DB,
		stopChan: make(chan struct{}),
	}

	if err := store.createTable(); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	if config.CleanupInterval > 0 {
		store.wg.Add(1)
		go store.cleanup(config.CleanupInterval)
	}

	return store, nil
}

func (s *DatabaseStore) createTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(64) PRIMARY KEY,
			user_id BIGINT,
			flashes TEXT,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at)`)
	return err
}

func (s *DatabaseStore) Get(ctx context.Context, id string) (*Session, error) {
	var sess Session
	var userID sql.NullInt64
	var flashesJSON sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, flashes, created_at, expires_at
		FROM sessions
		WHERE id = $1
	`, id).Scan(&sess.ID, &userID, &flashesJSON, &sess.CreatedAt, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session query failed: %w", err)
	}

	if sess.IsExpired() {
		_ = s.Delete(ctx, id)
		return nil, ErrExpired
	}

	if userID.Valid {
		sess.UserID = userID.Int64
	}
	if flashesJSON.Valid && flashesJSON.String != "" {
		if err := json.Unmarshal([]byte(flashesJSON.String), &sess.Flashes); err != nil {
			return nil, fmt.Errorf("corrupt session flashes: %w", err)
		}
	}

	return &sess, nil
}

func (s *DatabaseStore) Set(ctx context.Context, id string, sess *Session, ttl time.Duration) error {
	var flashesJSON sql.NullString
	if len(sess.Flashes) > 0 {
		data, err := json.Marshal(sess.Flashes)
		if err != nil {
			return fmt.Errorf("failed to encode session flashes: %w", err)
		}
		flashesJSON = sql.NullString{String: string(data), Valid: true}
	}

	var userID sql.NullInt64
	if sess.UserID != 0 {
		userID = sql.NullInt64{Int64: sess.UserID, Valid: true}
	}

	expiresAt := time.Now().Add(ttl)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, flashes, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			flashes = excluded.flashes,
			expires_at = excluded.expires_at
	`, id, userID, flashesJSON, sess.CreatedAt, expiresAt)
	if err != nil {
		return fmt.Errorf("session save failed: %w", err)
	}
	return nil
}

func (s *DatabaseStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// Close stops the cleanup goroutine. The underlying database handle is owned
// by the caller and stays open.
func (s *DatabaseStore) Close() error {
	close(s.stopChan)
	s.wg.Wait()
	return nil
}

func (s *DatabaseStore) cleanup(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			_, _ = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, time.Now())
			cancel()
		}
	}
}
