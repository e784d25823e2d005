package database

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// ConnectRedis connects to Redis. Pool sizing comes from configuration;
// sessions, rate limiting and the entry-list cache all share this client.
func ConnectRedis(redisURI string, poolSize, minIdleConns int) error {
	opt, err := redis.ParseURL(redisURI)
	if err != nil {
		return err
	}

	if poolSize > 0 {
		opt.PoolSize = poolSize
	}
	if minIdleConns > 0 && minIdleConns <= opt.PoolSize {
		opt.MinIdleConns = minIdleConns
	}
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	RedisClient = redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		return err
	}

	log.Println("✅ Connected to Redis")
	return nil
}

// DisconnectRedis closes the Redis connection
func DisconnectRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}
