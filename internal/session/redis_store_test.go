package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, "")
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func TestRedisStoreGetSet(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	sess := New("id-1", time.Hour)
	sess.UserID = 42
	sess.AddFlash(FlashError, "nope")

	require.NoError(t, store.Set(ctx, "id-1", sess, time.Hour))

	got, err := store.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	require.Len(t, got.Flashes, 1)
	assert.Equal(t, FlashError, got.Flashes[0].Type)
}

func TestRedisStoreKeyPrefix(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "id-1", New("id-1", time.Hour), time.Hour))

	assert.True(t, mr.Exists("racha:session:id-1"))
}

func TestRedisStoreGetMissing(t *testing.T) {
	store, _ := newTestRedisStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreTTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "id-1", New("id-1", time.Hour), time.Hour))

	// Redis expires the key itself once the TTL elapses.
	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "id-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "id-1", New("id-1", time.Hour), time.Hour))
	require.NoError(t, store.Delete(ctx, "id-1"))

	_, err := store.Get(ctx, "id-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreCorruptData(t *testing.T) {
	store, mr := newTestRedisStore(t)

	mr.Set("racha:session:bad", "{not json")

	_, err := store.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
