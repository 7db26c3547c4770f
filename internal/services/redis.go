package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharewheels/carpool-backend/internal/models"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client.
func InitRedis(redisURL string) error {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		RedisClient = nil
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// SearchCacheKey derives a stable cache key from the normalized repository
// part of a ride search. Sorting and bucket filters are applied per request
// and deliberately left out of the key.
func SearchCacheKey(from, to string, minSeats int, date time.Time, tags []string) string {
	return fmt.Sprintf("rides:search:%s|%s|%d|%s|%s",
		strings.ToLower(from),
		strings.ToLower(to),
		minSeats,
		date.Format("2006-01-02"),
		strings.ToLower(strings.Join(tags, ",")),
	)
}

// CacheSearchResults stores a search result set with a short TTL.
func CacheSearchResults(ctx context.Context, key string, rides []models.Ride, ttl time.Duration) error {
	if RedisClient == nil {
		return nil
	}
	data, err := json.Marshal(rides)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, key, data, ttl).Err()
}

// GetCachedSearchResults retrieves a cached search result set. The second
// return value reports a cache hit.
func GetCachedSearchResults(ctx context.Context, key string) ([]models.Ride, bool, error) {
	if RedisClient == nil {
		return nil, false, nil
	}
	data, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rides []models.Ride
	if err := json.Unmarshal([]byte(data), &rides); err != nil {
		return nil, false, err
	}
	return rides, true, nil
}

// InvalidateSearchCache drops all cached ride searches. Called after writes
// that change what a search may return.
func InvalidateSearchCache(ctx context.Context) {
	if RedisClient == nil {
		return
	}
	iter := RedisClient.Scan(ctx, 0, "rides:search:*", 100).Iterator()
	for iter.Next(ctx) {
		RedisClient.Del(ctx, iter.Val())
	}
}

// AcquireResetLock takes a short-lived leader lock so that exactly one
// instance performs a scheduled accumulator reset.
func AcquireResetLock(ctx context.Context, key string, ttl time.Duration) bool {
	if RedisClient == nil {
		// Without redis there is no multi-instance coordination; let the
		// single instance proceed.
		return true
	}
	ok, err := RedisClient.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false
	}
	return ok
}
