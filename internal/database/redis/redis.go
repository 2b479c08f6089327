package redis

import (
	"context"
	"log"
	"time"

	"learning-service/internal/config"

	redis_v9 "github.com/redis/go-redis/v9"
)

var Client *redis_v9.Client

// Connect initializes the Redis client. Returns nil when no address is
// configured; callers fall back to in-process state in that case.
func Connect(cfg config.RedisConfig) *redis_v9.Client {
	if cfg.Address == "" {
		log.Println("Redis not configured, using in-process fallbacks")
		return nil
	}

	Client = redis_v9.NewClient(&redis_v9.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := Client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: could not reach Redis at %s: %s", cfg.Address, err)
	} else {
		log.Println("Successfully connected to Redis")
	}
	return Client
}

func Disconnect() {
	if Client != nil {
		if err := Client.Close(); err != nil {
			log.Printf("Error closing Redis client: %s", err)
		}
	}
}
