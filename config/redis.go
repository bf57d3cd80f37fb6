package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/venue-app/utils"
)

// NewRedisClient returns nil when REDIS_ADDR is empty or the server does not
// answer; callers then run without the response cache.
func NewRedisClient(c Config) *redis.Client {
	if c.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		utils.ErrorLogger.Warnf("Redis unavailable at %s, cache disabled: %v", c.RedisAddr, err)
		_ = client.Close()
		return nil
	}
	return client
}
