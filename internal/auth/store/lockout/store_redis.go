package lockout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"avgverzoek/internal/auth/models"
)

const lockoutKeyPrefix = "lockout:"

// RedisStore shares lockout records between instances. Records expire with
// the ttl passed to Save.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*models.LoginLockout, error) {
	data, err := s.client.Get(ctx, lockoutKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lockout: %w", err)
	}
	var record models.LoginLockout
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode lockout: %w", err)
	}
	return &record, nil
}

func (s *RedisStore) Save(ctx context.Context, record *models.LoginLockout, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Delete(ctx, record.Key)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode lockout: %w", err)
	}
	if err := s.client.Set(ctx, lockoutKeyPrefix+record.Key, data, ttl).Err(); err != nil {
		return fmt.Errorf("save lockout: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, lockoutKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete lockout: %w", err)
	}
	return nil
}
