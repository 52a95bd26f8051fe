package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const (
	lastSeenKey = "chat:last_seen"
	onlineKey   = "chat:online"
)

// RedisStore mirrors presence into Redis for last-seen lookups. It is
// advisory only; the in-process registry stays authoritative.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// MarkOnline records a user as online and stamps their last-seen time.
func (s *RedisStore) MarkOnline(ctx context.Context, userID, timestamp string) error {
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, lastSeenKey, userID, timestamp)
	pipe.SAdd(ctx, onlineKey, userID)
	_, err := pipe.Exec(ctx)
	return err
}

// MarkOffline records a user as offline and stamps their last-seen
// time.
func (s *RedisStore) MarkOffline(ctx context.Context, userID, timestamp string) error {
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, lastSeenKey, userID, timestamp)
	pipe.SRem(ctx, onlineKey, userID)
	_, err := pipe.Exec(ctx)
	return err
}

// LastSeen returns the last recorded timestamp for a user, or "" if the
// user was never seen.
func (s *RedisStore) LastSeen(ctx context.Context, userID string) (string, error) {
	ts, err := s.client.HGet(ctx, lastSeenKey, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return ts, nil
}

// OnlineUsers returns the users currently marked online.
func (s *RedisStore) OnlineUsers(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, onlineKey).Result()
}
