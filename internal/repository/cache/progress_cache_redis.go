package cache

import (
	"context"
	"encoding/json"
	"time"

	"fundocs-be/internal/pkg/logger"
	"fundocs-be/pkg/contentapi"

	"github.com/redis/go-redis/v9"
)

const progressKeyPrefix = "fundocs:progress:"

type RedisProgressCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.ILogger
}

func NewRedisProgressCache(rdb *redis.Client, ttl time.Duration, log logger.ILogger) *RedisProgressCache {
	return &RedisProgressCache{rdb: rdb, ttl: ttl, logger: log}
}

func (c *RedisProgressCache) Get(ctx context.Context, userID string) (*contentapi.Progress, bool) {
	raw, err := c.rdb.Get(ctx, progressKeyPrefix+userID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("CACHE", "Progress cache read failed", map[string]interface{}{"user_id": userID, "error": err.Error()})
		}
		return nil, false
	}
	var p contentapi.Progress
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *RedisProgressCache) Set(ctx context.Context, userID string, p *contentapi.Progress) {
	if p == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, progressKeyPrefix+userID, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("CACHE", "Progress cache write failed", map[string]interface{}{"user_id": userID, "error": err.Error()})
	}
}

func (c *RedisProgressCache) Delete(ctx context.Context, userID string) {
	if err := c.rdb.Del(ctx, progressKeyPrefix+userID).Err(); err != nil {
		c.logger.Warn("CACHE", "Progress cache delete failed", map[string]interface{}{"user_id": userID, "error": err.Error()})
	}
}
