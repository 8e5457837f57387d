package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimitStoreType selects where rate limit counters live
type RateLimitStoreType string

const (
	RateLimitStoreMemory RateLimitStoreType = "memory"
	RateLimitStoreRedis  RateLimitStoreType = "redis"

	rateLimitPrefix = "ratelimit"
)

// RateLimitConfig configures NewRateLimiter
type RateLimitConfig struct {
	RequestsPerMinute int
	StoreType         RateLimitStoreType
	CleanupInterval   time.Duration // memory store only

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Logger *slog.Logger
}

// NewRateLimiter returns a per-client-IP rate limiting middleware.
func NewRateLimiter(cfg RateLimitConfig) (gin.HandlerFunc, error) {
	if cfg.RequestsPerMinute <= 0 {
		return nil, fmt.Errorf("requests per minute must be positive, got %d", cfg.RequestsPerMinute)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	var (
		store limiter.Store
		err   error
	)
	switch cfg.StoreType {
	case RateLimitStoreRedis:
		store, err = newRedisStore(cfg)
	case RateLimitStoreMemory, "":
		interval := cfg.CleanupInterval
		if interval <= 0 {
			interval = limiter.DefaultCleanUpInterval
		}
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			CleanUpInterval: interval,
		})
	default:
		err = fmt.Errorf("unsupported rate limit store %q", cfg.StoreType)
	}
	if err != nil {
		return nil, err
	}

	rate := limiter.Rate{Period: time.Minute, Limit: int64(cfg.RequestsPerMinute)}
	logger := cfg.Logger

	return mgin.NewMiddleware(
		limiter.New(store, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			logger.WarnContext(c.Request.Context(), "rate limit exceeded",
				"client_ip", c.ClientIP(), "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests, please try again later",
			})
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			logger.ErrorContext(c.Request.Context(), "rate limiter store failed", "error", err)
			// Counters unavailable: let the request through.
			c.Next()
		}),
	), nil
}

// NewMemoryRateLimiter returns an in-process rate limiter.
func NewMemoryRateLimiter(requestsPerMinute int) (gin.HandlerFunc, error) {
	return NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		StoreType:         RateLimitStoreMemory,
	})
}

// NewRedisRateLimiter returns a rate limiter whose counters are shared through
// Redis, so every instance behind a load balancer enforces one limit.
func NewRedisRateLimiter(requestsPerMinute int, addr, password string, db int) (gin.HandlerFunc, error) {
	return NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		StoreType:         RateLimitStoreRedis,
		RedisAddr:         addr,
		RedisPassword:     password,
		RedisDB:           db,
	})
}

func newRedisStore(cfg RateLimitConfig) (limiter.Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   rateLimitPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create Redis rate limit store: %w", err)
	}
	return store, nil
}
