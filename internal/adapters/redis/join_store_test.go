package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/ports"
	"github.com/classline/live-api/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *goredis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func testJoinSession(roomName, identity string) ports.JoinSession {
	return ports.JoinSession{
		ID:        "join-" + identity,
		RoomName:  roomName,
		Identity:  identity,
		Token:     "token-" + identity,
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
}

func TestJoinStore_SaveAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewJoinStore(client)
	ctx := context.Background()

	sess := testJoinSession("class-101", "student-1")
	require.NoError(t, store.Save(ctx, sess))

	retrieved, err := store.Get(ctx, "class-101", "student-1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, retrieved.ID)
	assert.Equal(t, sess.Token, retrieved.Token)
	assert.WithinDuration(t, sess.ExpiresAt, retrieved.ExpiresAt, time.Second)
}

func TestJoinStore_GetNonExistent(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewJoinStore(client)

	_, err := store.Get(context.Background(), "class-101", "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestJoinStore_SaveExpired(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewJoinStore(client)

	sess := testJoinSession("class-101", "student-1")
	sess.ExpiresAt = time.Now().Add(-time.Minute)

	err := store.Save(context.Background(), sess)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestJoinStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewJoinStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testJoinSession("class-101", "student-1")))
	require.NoError(t, store.Delete(ctx, "class-101", "student-1"))

	_, err := store.Get(ctx, "class-101", "student-1")
	assert.True(t, apperrors.IsNotFound(err))

	// Deleting again is fine.
	assert.NoError(t, store.Delete(ctx, "class-101", "student-1"))
}

func TestJoinStore_DeleteRoom(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewJoinStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testJoinSession("class-101", "student-1")))
	require.NoError(t, store.Save(ctx, testJoinSession("class-101", "student-2")))
	require.NoError(t, store.Save(ctx, testJoinSession("class-102", "student-3")))

	require.NoError(t, store.DeleteRoom(ctx, "class-101"))

	_, err := store.Get(ctx, "class-101", "student-1")
	assert.True(t, apperrors.IsNotFound(err))
	_, err = store.Get(ctx, "class-101", "student-2")
	assert.True(t, apperrors.IsNotFound(err))

	// Other rooms are untouched.
	_, err = store.Get(ctx, "class-102", "student-3")
	assert.NoError(t, err)
}

func TestJoinStore_TTLFollowsExpiry(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewJoinStore(client)
	ctx := context.Background()

	sess := testJoinSession("class-101", "student-1")
	sess.ExpiresAt = time.Now().Add(10 * time.Minute)
	require.NoError(t, store.Save(ctx, sess))

	ttl, err := client.TTL(ctx, "join:class-101:student-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 9*time.Minute)
	assert.LessOrEqual(t, ttl, 10*time.Minute)
}
