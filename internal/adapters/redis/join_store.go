package redis

// Package redis provides the Redis-backed join session store. Keys expire
// with the capability token they record, so the store self-cleans.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/ports"
)

const defaultPrefix = "join:"

// Ensure compile-time conformance to the port.
var _ ports.JoinStore = (*JoinStore)(nil)

// JoinStore persists issued join sessions in Redis, keyed by room and
// identity.
type JoinStore struct {
	client redis.UniversalClient
	prefix string
}

// NewJoinStore creates a Redis-backed join store.
func NewJoinStore(client redis.UniversalClient) *JoinStore {
	return &JoinStore{client: client, prefix: defaultPrefix}
}

// NewJoinStoreWithPrefix creates a join store with a custom key prefix.
func NewJoinStoreWithPrefix(client redis.UniversalClient, prefix string) *JoinStore {
	return &JoinStore{client: client, prefix: prefix}
}

func (s *JoinStore) key(roomName, identity string) string {
	return s.prefix + roomName + ":" + identity
}

func (s *JoinStore) Save(ctx context.Context, sess ports.JoinSession) error {
	if sess.RoomName == "" || sess.Identity == "" {
		return apperrors.Validation("join session requires a room and identity")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal join session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		// The token it records is already expired, don't save it
		return apperrors.Validation("join session is expired")
	}

	if err := s.client.Set(ctx, s.key(sess.RoomName, sess.Identity), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *JoinStore) Get(ctx context.Context, roomName, identity string) (ports.JoinSession, error) {
	if roomName == "" || identity == "" {
		return ports.JoinSession{}, apperrors.NotFound("join session not found")
	}

	data, err := s.client.Get(ctx, s.key(roomName, identity)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.JoinSession{}, apperrors.NotFound("join session not found")
		}
		return ports.JoinSession{}, fmt.Errorf("redis get: %w", err)
	}

	var sess ports.JoinSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return ports.JoinSession{}, fmt.Errorf("unmarshal join session: %w", err)
	}

	// Double-check expiration (Redis TTL should handle this, but be defensive)
	if time.Now().After(sess.ExpiresAt) {
		if err := s.Delete(ctx, roomName, identity); err != nil {
			return ports.JoinSession{}, fmt.Errorf("cleanup expired join session: %w", err)
		}
		return ports.JoinSession{}, apperrors.NotFound("join session not found")
	}

	return sess, nil
}

func (s *JoinStore) Delete(ctx context.Context, roomName, identity string) error {
	if roomName == "" || identity == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(roomName, identity)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// DeleteRoom removes every stored join session for a room. Keys are walked
// with SCAN so a large room never blocks the server.
func (s *JoinStore) DeleteRoom(ctx context.Context, roomName string) error {
	if roomName == "" {
		return nil
	}

	pattern := s.prefix + roomName + ":*"
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del batch: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis del batch: %w", err)
		}
	}
	return nil
}
