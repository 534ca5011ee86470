package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// EquipmentKey is the cache key for one equipment record.
func EquipmentKey(equipmentID int32) string {
	return fmt.Sprintf("equipment:%d", equipmentID)
}

// ErrCacheMiss is returned when a key is not present.
var ErrCacheMiss = redis.Nil

// Client is the read-through cache used for equipment lookups. The cache is
// advisory: availability decisions are always made against the database, the
// cache only serves cheap pre-checks and list views.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

type redisClient struct {
	rdb *redis.Client
}

// NewRedisClient connects to redis at addr. A failed ping is returned to the
// caller; the service degrades to database-only reads when the cache is down.
func NewRedisClient(addr string) (Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &redisClient{rdb: rdb}, nil
}

func (c *redisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *redisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

func (c *redisClient) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}
