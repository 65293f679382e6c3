package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore implements Store backed by Redis. Expiry is enforced twice:
// Redis evicts keys via TTL, and Get still checks ExpiresAt so a paused
// Redis clock can't resurrect stale sessions.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Create stores a new session with a TTL matching its expiry.
func (r *RedisStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return ErrInvalidSession
	}

	data, err := json.Marshal(session)
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	if err := r.client.Set(ctx, redisKeyPrefix+session.ID, data, ttl).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Get retrieves a session by identifier.
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}

	if session.IsExpired() {
		_ = r.client.Del(ctx, redisKeyPrefix+id).Err()
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// Delete removes a session by identifier.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteExpired is a no-op for Redis; key TTLs handle expiry.
func (r *RedisStore) DeleteExpired(ctx context.Context) error {
	return nil
}
