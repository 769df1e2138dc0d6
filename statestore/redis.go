package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gobbyhq/warden/logger"
	"github.com/gobbyhq/warden/workflow"
)

// defaultTTLHours is the default session state expiry in hours.
const defaultTTLHours = 24

// RedisStore provides a Redis-backed implementation of the Store interface.
// It uses JSON serialization for state storage and supports automatic
// TTL-based cleanup. This implementation is suitable for distributed
// deployments where multiple daemons share session governance.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets the time-to-live for session states.
// After this duration, abandoned session states are automatically deleted.
// Default is 24 hours. Set to 0 for no expiration.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for Redis keys.
// Default is "warden".
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a new Redis-backed state store.
//
// Example:
//
//	store := NewRedisStore(
//	    redis.NewClient(&redis.Options{Addr: "localhost:6379"}),
//	    WithTTL(24 * time.Hour),
//	    WithPrefix("myapp"),
//	)
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	store := &RedisStore{
		client: client,
		ttl:    defaultTTLHours * time.Hour,
		prefix: "warden",
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Get retrieves a session state by ID from Redis.
// Backend failures are logged and reported as a miss so the engine fails
// open rather than blocking the session on a storage outage.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*workflow.State, bool) {
	if sessionID == "" {
		return nil, false
	}

	key := s.sessionKey(sessionID)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("redis get failed, treating session as ungoverned",
				"session_id", sessionID, "error", err)
		}
		return nil, false
	}

	var state workflow.State
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("corrupt session state in redis, treating as ungoverned",
			"session_id", sessionID, "error", err)
		return nil, false
	}

	return &state, true
}

// Save persists a session state to Redis with TTL.
func (s *RedisStore) Save(ctx context.Context, state *workflow.State) error {
	if state == nil {
		return ErrInvalidState
	}
	if state.SessionID == "" {
		return ErrInvalidID
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	key := s.sessionKey(state.SessionID)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Delete removes a session state from Redis.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidID
	}

	deleted, err := s.client.Del(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// sessionKey builds the Redis key for a session state.
func (s *RedisStore) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, sessionID)
}
