package database

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis. A missing or unreachable Redis is not
// fatal: the caller gets nil and runs without the balance cache.
func NewRedisClient(redisURL string) *redis.Client {
	if redisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Invalid REDIS_URL, running without cache: %v", err)
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("Redis not available, running without cache: %v", err)
		return nil
	}

	log.Println("Connected to Redis successfully")
	return client
}
