// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"fieldserve/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (cohort and cancellation
	// aggregates, presentation sessions).
	CacheClient *redis.Client
	// StatsCacheClient is the dedicated client for rolling aggregate counters.
	StatsCacheClient *redis.Client
)

// InitRedis initializes all Redis clients used by the service.
func InitRedis() {
	InitCache()
	InitStatsCache()
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitStatsCache initializes the Redis client for aggregate counters.
func InitStatsCache() {
	StatsCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisStatsDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := StatsCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Stats): %v", err)
	}
}

// GetStatsCacheClient returns the Redis client for aggregate counters.
func GetStatsCacheClient() *redis.Client {
	if StatsCacheClient == nil {
		InitStatsCache()
	}
	return StatsCacheClient
}
