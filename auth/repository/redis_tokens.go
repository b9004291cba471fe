package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	authpkg "github.com/mikios34/customer-admin/auth"
	"github.com/redis/go-redis/v9"
)

const (
	refreshPrefix = "token:refresh:"
	revokedPrefix = "token:revoked:"
)

// RedisTokenStore keeps refresh tokens and the access token blacklist in Redis.
type RedisTokenStore struct {
	rdb *redis.Client
}

func NewRedisTokenStore(rdb *redis.Client) authpkg.TokenStore {
	return &RedisTokenStore{rdb: rdb}
}

func (s *RedisTokenStore) SaveRefresh(ctx context.Context, jti, userID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, refreshPrefix+jti, userID, ttl).Err(); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) ConsumeRefresh(ctx context.Context, jti string) (string, error) {
	userID, err := s.rdb.GetDel(ctx, refreshPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return "", authpkg.ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("consume refresh token: %w", err)
	}
	return userID, nil
}

func (s *RedisTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, revokedPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
