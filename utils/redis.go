package utils

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharath018/gencon-schedule-backend/config"
)

var (
	RedisClient *redis.Client
	redisOnce   sync.Once
	redisErr    error
)

// InitRedis connects the shared Redis client (singleton). When REDIS_ADDR is
// empty or Redis is unreachable the client stays nil and callers degrade:
// no tournament cache, no import lock, in-memory rate limits.
func InitRedis(cfg *config.Config) error {
	redisOnce.Do(func() {
		if cfg.RedisAddr == "" {
			log.Println("ℹ️  REDIS_ADDR not set, continuing without Redis")
			redisErr = fmt.Errorf("redis not configured")
			return
		}

		log.Printf("🔄 Connecting to Redis at %s...", cfg.RedisAddr)
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("❌ Redis ping failed: %v", err)
			log.Println("ℹ️  Continuing without Redis")
			_ = client.Close()
			redisErr = fmt.Errorf("redis ping failed: %w", err)
			return
		}

		log.Println("✅ Connected to Redis")
		RedisClient = client
	})
	return redisErr
}

// IsRedisEnabled checks if Redis is available
func IsRedisEnabled() bool {
	return RedisClient != nil
}

// CloseRedis closes the shared client, if any.
func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			log.Printf("⚠️ Error closing Redis: %v", err)
		}
	}
}
