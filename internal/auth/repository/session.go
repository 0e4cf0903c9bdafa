package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"roadbook/pkg/config"
)

const sessionKeyPrefix = "session:"

// SessionStore tracks live sessions server-side so that tokens can be
// revoked before they expire. One session per user; logging in again
// refreshes it.
type SessionStore interface {
	Start(ctx context.Context, userID string, ttl time.Duration) error
	Active(ctx context.Context, userID string) (bool, error)
	End(ctx context.Context, userID string) error
}

type redisSessionStore struct {
	cfg    *config.Config
	client *redis.Client
}

func NewRedisSessionStore(cfg *config.Config) SessionStore {
	return &redisSessionStore{
		cfg:    cfg,
		client: cfg.Client.Redis,
	}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

func (s *redisSessionStore) Start(ctx context.Context, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(userID), time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Active(ctx context.Context, userID string) (bool, error) {
	err := s.client.Get(ctx, sessionKey(userID)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return true, nil
}

func (s *redisSessionStore) End(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}
