package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/orbitel/oms/internal/ports"
)

// Config carries the throttling settings for the Redis-backed limiter.
type Config struct {
	Enabled  bool
	RedisURL string
}

// NewRateLimitService builds a Redis-backed limiter, or a no-op one when
// throttling is disabled.
func NewRateLimitService(config Config, logger *logrus.Logger) (ports.RateLimitService, error) {
	if !config.Enabled {
		logger.Info("Rate limiting disabled")
		return &noopRateLimitService{}, nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisClient := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Rate limiting service initialized")

	return &rateLimitService{
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

type rateLimitService struct {
	redisClient *redis.Client
	logger      *logrus.Logger
}

// CheckLimit reports whether the key is still under the attempt limit.
func (s *rateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := s.redisClient.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		s.logger.WithError(err).Error("Failed to get attempts count")
		return false, fmt.Errorf("failed to get attempts: %w", err)
	}

	underLimit := count < limit

	s.logger.WithFields(logrus.Fields{
		"key":         key,
		"current":     count,
		"limit":       limit,
		"under_limit": underLimit,
	}).Debug("Rate limit check")

	return underLimit, nil
}

// Increment bumps the counter for the key, starting the window on first use.
func (s *rateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	pipeline := s.redisClient.Pipeline()
	pipeline.Incr(ctx, key)
	pipeline.Expire(ctx, key, window)

	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to increment rate limit counter")
		return fmt.Errorf("failed to increment rate limit: %w", err)
	}
	return nil
}

// Reset clears the counter for the key.
func (s *rateLimitService) Reset(ctx context.Context, key string) error {
	if err := s.redisClient.Del(ctx, key).Err(); err != nil {
		s.logger.WithError(err).Error("Failed to reset rate limit counter")
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}

// noopRateLimitService is used when throttling is disabled.
type noopRateLimitService struct{}

func (n *noopRateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return true, nil
}

func (n *noopRateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	return nil
}

func (n *noopRateLimitService) Reset(ctx context.Context, key string) error {
	return nil
}
