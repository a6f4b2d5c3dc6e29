package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/config"
	"github.com/khoahotran/pathwise/pkg/logger"
)

func NewRedisClient(cfg config.Config, log logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("can not connect Redis: %w", err)
	}

	log.Info("Connect Redis successfully.")
	return rdb, nil
}

type redisPreferenceCache struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisPreferenceCache stores each user's keys under
// "<prefix>:<userID>:<key>". A zero ttl keeps entries forever.
func NewRedisPreferenceCache(rdb redis.Cmdable, prefix string, ttl time.Duration) service.PreferenceCache {
	return &redisPreferenceCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *redisPreferenceCache) key(userID uuid.UUID, key string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, userID, key)
}

func (c *redisPreferenceCache) Get(ctx context.Context, userID uuid.UUID, key string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, c.key(userID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

func (c *redisPreferenceCache) Set(ctx context.Context, userID uuid.UUID, key string, value []byte) error {
	if err := c.rdb.Set(ctx, c.key(userID, key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
