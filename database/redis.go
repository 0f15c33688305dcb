// database/redis.go - Optional Redis connection for minigame session storage
package database

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var rdb *redis.Client

// InitRedis connects to Redis using the given URL (redis://host:port/db).
// Returns the client so callers can wire it into session storage.
func InitRedis(redisURL string) *redis.Client {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("Failed to parse REDIS_URL: %v", err)
	}
	rdb = redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	log.Println("✅ Redis connection successfully established")
	return rdb
}

// GetRedis returns the Redis client, or nil if Redis was not configured.
func GetRedis() *redis.Client {
	return rdb
}

// CloseRedis closes the Redis connection if one was opened.
func CloseRedis() error {
	if rdb == nil {
		return nil
	}
	return rdb.Close()
}
