package preview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mikios34/customer-admin/intake"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "preview:"

// RedisStore keeps previews in Redis hashes that expire after ttl, so a
// preview outlives neither its form nor a crashed process for long.
type RedisStore struct {
	rdb       *redis.Client
	ttl       time.Duration
	urlPrefix string
}

// NewRedisStore creates a Redis backed preview store.
func NewRedisStore(rdb *redis.Client, ttl time.Duration, urlPrefix string) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, urlPrefix: urlPrefix}
}

func (s *RedisStore) Acquire(ctx context.Context, h *intake.FileHandle) (intake.PreviewResource, error) {
	id := uuid.NewString()
	key := keyPrefix + id
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "name", h.Name, "content_type", h.ContentType, "data", h.Bytes())
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return intake.PreviewResource{}, fmt.Errorf("store preview: %w", err)
	}
	return intake.PreviewResource{ID: id, URL: joinURL(s.urlPrefix, id)}, nil
}

func (s *RedisStore) Release(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete preview: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Blob, error) {
	vals, err := s.rdb.HGetAll(ctx, keyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load preview: %w", err)
	}
	if len(vals) == 0 {
		return nil, ErrNotFound
	}
	return &Blob{Name: vals["name"], ContentType: vals["content_type"], Data: []byte(vals["data"])}, nil
}
