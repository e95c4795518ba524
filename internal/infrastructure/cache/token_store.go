package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore tracks issued access tokens so that logout can revoke them
// before they expire.
type TokenStore interface {
	Store(ctx context.Context, subject, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, subject, tokenID string) (bool, error)
	Revoke(ctx context.Context, subject, tokenID string) error
}

type redisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func accessTokenKey(subject, tokenID string) string {
	return fmt.Sprintf("access_token:%s:%s", subject, tokenID)
}

func (s *redisTokenStore) Store(ctx context.Context, subject, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, accessTokenKey(subject, tokenID), "valid", ttl).Err()
}

func (s *redisTokenStore) Exists(ctx context.Context, subject, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, accessTokenKey(subject, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisTokenStore) Revoke(ctx context.Context, subject, tokenID string) error {
	return s.client.Del(ctx, accessTokenKey(subject, tokenID)).Err()
}
