package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sparklewash/carwash-backend/config"
)

var (
	RedisClient *redis.Client
	Ctx         = context.Background()
)

func InitRedis(cfg *config.Config) error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(Ctx, 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// PublishUserEvent pushes a realtime payload onto a per-user channel.
// Web/mobile clients subscribe to these channels for live booking updates.
func PublishUserEvent(userID uint, payload string) {
	if RedisClient == nil {
		return
	}
	channel := fmt.Sprintf("notifications:user:%d", userID)
	_ = RedisClient.Publish(Ctx, channel, payload).Err()
}
