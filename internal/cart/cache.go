package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hanjan/hanjan-client/config"
	"github.com/hanjan/hanjan-client/pkg/logger"
)

// SnapshotCache persists the last known cart snapshot so a restarted client
// can show it while the first authoritative refresh is in flight. Contents
// are advisory only.
type SnapshotCache interface {
	Load(ctx context.Context) ([]Line, error)
	Save(ctx context.Context, lines []Line) error
	Clear(ctx context.Context) error
}

const snapshotTTL = 24 * time.Hour

// RedisSnapshotCache stores the snapshot as JSON under a per-user key.
type RedisSnapshotCache struct {
	client *redis.Client
	key    string
}

// NewRedisSnapshotCache connects to Redis and verifies the connection. The
// userKey scopes the snapshot to one account, so a different login never
// warms from another user's cart.
func NewRedisSnapshotCache(cfg *config.RedisConfig, userKey string) (*RedisSnapshotCache, error) {
	logger.Info("Initializing cart snapshot cache", map[string]interface{}{
		"addr": cfg.Addr(),
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSnapshotCache{
		client: client,
		key:    fmt.Sprintf("cart:snapshot:%s", userKey),
	}, nil
}

func (c *RedisSnapshotCache) Load(ctx context.Context) ([]Line, error) {
	val, err := c.client.Get(ctx, c.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var lines []Line
	if err := json.Unmarshal([]byte(val), &lines); err != nil {
		return nil, fmt.Errorf("corrupt cart snapshot: %w", err)
	}
	return lines, nil
}

func (c *RedisSnapshotCache) Save(ctx context.Context, lines []Line) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, data, snapshotTTL).Err()
}

func (c *RedisSnapshotCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

// Close releases the Redis connection.
func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}
