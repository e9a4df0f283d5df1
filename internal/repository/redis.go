package repository

import (
	"context"
	"fmt"
	"time"

	"trailmarket/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisStateRepository keeps the gateway's ephemeral state in Redis so that
// typing indicators and rate limits survive restarts and shard across
// instances.
type RedisStateRepository struct {
	client *redis.Client
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisStateRepository(client *redis.Client) *RedisStateRepository {
	return &RedisStateRepository{client: client}
}

func typingKey(chatID, userID int64) string {
	return fmt.Sprintf("typing:%d:%d", chatID, userID)
}

func (r *RedisStateRepository) SetTyping(ctx context.Context, chatID, userID int64, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, typingKey(chatID, userID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set typing state: %w", err)
	}
	return nil
}

func (r *RedisStateRepository) ClearTyping(ctx context.Context, chatID, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, typingKey(chatID, userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear typing state: %w", err)
	}
	return nil
}

func (r *RedisStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("rate_limit:%d", userID)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
