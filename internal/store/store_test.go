package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// testSchema mirrors the Postgres migrations in sqlite DDL. The queries
// under test are identical in both dialects.
const testSchema = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id),
    name TEXT NOT NULL,
    description TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    archived BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE completions (
    task_id INTEGER NOT NULL REFERENCES tasks(id),
    completed_date DATE NOT NULL,
    PRIMARY KEY (task_id, completed_date)
);

CREATE TABLE groups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    invite_code TEXT NOT NULL UNIQUE,
    created_by INTEGER NOT NULL REFERENCES users(id),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE group_members (
    group_id INTEGER NOT NULL REFERENCES groups(id),
    user_id INTEGER NOT NULL REFERENCES users(id),
    PRIMARY KEY (group_id, user_id)
);
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return New(db)
}

func createTestUser(t *testing.T, s *Store, username string) int64 {
	t.Helper()
	id, err := s.CreateUser(context.Background(), username, username+"@test.com", "hash")
	require.NoError(t, err)
	return id
}

func createTestTask(t *testing.T, s *Store, userID int64, name string) int64 {
	t.Helper()
	id, err := s.CreateTask(context.Background(), userID, name, "")
	require.NoError(t, err)
	return id
}

var testToday = time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC)

func completeOn(t *testing.T, s *Store, taskID int64, daysAgo int) {
	t.Helper()
	require.NoError(t, s.Complete(context.Background(), taskID, testToday.AddDate(0, 0, -daysAgo)))
}
