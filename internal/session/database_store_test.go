package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestDatabaseStore(t *testing.T) *DatabaseStore {
	t.Helper()
	config := DefaultDatabaseConfig(setupTestDB(t))
	config.CleanupInterval = 0

	store, err := NewDatabaseStore(config)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewDatabaseStoreCreatesTable(t *testing.T) {
	db := setupTestDB(t)
	config := DefaultDatabaseConfig(db)
	config.CleanupInterval = 0

	store, err := NewDatabaseStore(config)
	require.NoError(t, err)
	defer store.Close()

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='sessions'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "sessions", name)
}

func TestDatabaseStoreGetSet(t *testing.T) {
	store := newTestDatabaseStore(t)
	ctx := context.Background()

	sess := New("id-1", time.Hour)
	sess.UserID = 42
	sess.AddFlash(FlashSuccess, "welcome")

	require.NoError(t, store.Set(ctx, "id-1", sess, time.Hour))

	got, err := store.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, int64(42), got.UserID)
	require.Len(t, got.Flashes, 1)
	assert.Equal(t, "welcome", got.Flashes[0].Message)
}

func TestDatabaseStoreAnonymousSession(t *testing.T) {
	store := newTestDatabaseStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "anon", New("anon", time.Hour), time.Hour))

	got, err := store.Get(ctx, "anon")
	require.NoError(t, err)
	assert.Zero(t, got.UserID)
	assert.Empty(t, got.Flashes)
}

func TestDatabaseStoreUpsert(t *testing.T) {
	store := newTestDatabaseStore(t)
	ctx := context.Background()

	sess := New("id-1", time.Hour)
	require.NoError(t, store.Set(ctx, "id-1", sess, time.Hour))

	sess.UserID = 9
	require.NoError(t, store.Set(ctx, "id-1", sess, time.Hour))

	got, err := store.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.UserID)
}

func TestDatabaseStoreGetMissing(t *testing.T) {
	store := newTestDatabaseStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDatabaseStoreExpiry(t *testing.T) {
	store := newTestDatabaseStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "id-1", New("id-1", time.Hour), -time.Minute))

	_, err := store.Get(ctx, "id-1")
	assert.ErrorIs(t, err, ErrExpired)

	// The expired row is purged on read.
	_, err = store.Get(ctx, "id-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDatabaseStoreDelete(t *testing.T) {
	store := newTestDatabaseStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "id-1", New("id-1", time.Hour), time.Hour))
	require.NoError(t, store.Delete(ctx, "id-1"))

	_, err := store.Get(ctx, "id-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
