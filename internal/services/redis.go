package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// Aggregates are cheap queries; the cache only smooths repeated profile
// views, so the TTL stays short and writes invalidate eagerly.
const statsTTL = time.Minute

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

func statsKey(userID uint) string {
	return fmt.Sprintf("user:stats:%d", userID)
}

func unreadKey(userID uint) string {
	return fmt.Sprintf("user:unread:%d", userID)
}

// CacheUserStats stores a user's computed profile statistics
func CacheUserStats(ctx context.Context, userID uint, stats interface{}) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, statsKey(userID), data, statsTTL).Err()
}

// GetCachedUserStats loads cached statistics into dest, reporting a hit
func GetCachedUserStats(ctx context.Context, userID uint, dest interface{}) (bool, error) {
	data, err := RedisClient.Get(ctx, statsKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, err
	}
	return true, nil
}

// InvalidateUserStats drops cached statistics after a write touches them
func InvalidateUserStats(ctx context.Context, userIDs ...uint) {
	for _, id := range userIDs {
		RedisClient.Del(ctx, statsKey(id))
	}
}

// CacheUnreadCount stores a user's unread notification count
func CacheUnreadCount(ctx context.Context, userID uint, count int64) error {
	return RedisClient.Set(ctx, unreadKey(userID), count, statsTTL).Err()
}

// GetCachedUnreadCount retrieves the cached unread count
func GetCachedUnreadCount(ctx context.Context, userID uint) (int64, bool, error) {
	count, err := RedisClient.Get(ctx, unreadKey(userID)).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// InvalidateUnreadCount drops the cached unread count
func InvalidateUnreadCount(ctx context.Context, userID uint) {
	RedisClient.Del(ctx, unreadKey(userID))
}
