package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/resguardo-civil/incident-reporting-service/internal/core/port"
)

// SlidingWindowConfig defines configuration for the sliding window limiter.
type SlidingWindowConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

// RateLimitRepository persists rate-limit attempts in Redis sorted sets.
// Each attempt is a member scored by its timestamp; reserving an attempt
// trims expired members, counts the remainder, and records the new attempt
// only when the window has capacity left.
type RateLimitRepository struct {
	client *redis.Client
	cfg    SlidingWindowConfig
}

// NewRateLimitRepository constructs a repository using the provided Redis client and config.
func NewRateLimitRepository(client *redis.Client, cfg SlidingWindowConfig) *RateLimitRepository {
	return &RateLimitRepository{client: client, cfg: cfg}
}

// Reserve trims the window, then either records the attempt or reports when
// the caller may retry.
func (r *RateLimitRepository) Reserve(ctx context.Context, identifier string, limit int, window time.Duration, at time.Time) (port.RateLimitReservation, error) {
	if window <= 0 {
		return port.RateLimitReservation{}, errors.New("window must be positive")
	}
	if limit <= 0 {
		return port.RateLimitReservation{}, errors.New("limit must be positive")
	}

	key := r.key(identifier)
	threshold := fmt.Sprintf("%f", float64(at.Add(-window).UnixNano()))

	if err := r.client.ZRemRangeByScore(ctx, key, "-inf", threshold).Err(); err != nil {
		return port.RateLimitReservation{}, fmt.Errorf("redis zremrangebyscore: %w", err)
	}

	count, err := r.client.ZCard(ctx, key).Result()
	if err != nil {
		return port.RateLimitReservation{}, fmt.Errorf("redis zcard: %w", err)
	}

	if int(count) >= limit {
		retryAfter, err := r.retryAfter(ctx, key, window, at)
		if err != nil {
			return port.RateLimitReservation{}, err
		}
		return port.RateLimitReservation{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	// The member carries a uuid suffix so two attempts landing on the same
	// nanosecond stay distinct set members instead of one rescored entry.
	member := redis.Z{
		Score:  float64(at.UnixNano()),
		Member: fmt.Sprintf("%d:%s", at.UnixNano(), uuid.NewString()),
	}
	if err := r.client.ZAdd(ctx, key, member).Err(); err != nil {
		return port.RateLimitReservation{}, fmt.Errorf("redis zadd: %w", err)
	}

	if r.cfg.TTL > 0 {
		if err := r.client.Expire(ctx, key, r.cfg.TTL).Err(); err != nil {
			return port.RateLimitReservation{}, fmt.Errorf("redis expire: %w", err)
		}
	}

	return port.RateLimitReservation{
		Allowed:   true,
		Remaining: limit - int(count) - 1,
	}, nil
}

func (r *RateLimitRepository) retryAfter(ctx context.Context, key string, window time.Duration, at time.Time) (time.Duration, error) {
	values, err := r.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min:    "-inf",
		Max:    fmt.Sprintf("%f", float64(at.UnixNano())),
		Offset: 0,
		Count:  1,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("redis zrangebyscore: %w", err)
	}

	if len(values) == 0 {
		return window, nil
	}

	nanos, _, _ := strings.Cut(values[0], ":")
	ts, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse timestamp: %w", err)
	}

	oldest := time.Unix(0, ts)
	retryAfter := oldest.Add(window).Sub(at)
	if retryAfter < 0 {
		retryAfter = 0
	}

	return retryAfter, nil
}

func (r *RateLimitRepository) key(identifier string) string {
	if r.cfg.KeyPrefix == "" {
		return identifier
	}
	return fmt.Sprintf("%s:%s", r.cfg.KeyPrefix, identifier)
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
