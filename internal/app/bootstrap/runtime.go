package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/mastry-api/internal/config"
	"github.com/wolfman30/mastry-api/internal/http/middleware"
	"github.com/wolfman30/mastry-api/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildLeadLimiter returns the limiter guarding lead submissions. A Redis
// client makes the limit shared across instances; otherwise it is per process.
// A non-positive rate disables limiting.
func BuildLeadLimiter(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) middleware.Limiter {
	if cfg == nil || cfg.LeadRateLimitRPS <= 0 {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if redisClient != nil {
		logger.Info("lead rate limiting via redis", "rps", cfg.LeadRateLimitRPS, "burst", cfg.LeadRateLimitBurst)
		return middleware.NewRedisLimiterForRate(redisClient, cfg.LeadRateLimitRPS, cfg.LeadRateLimitBurst)
	}
	logger.Info("lead rate limiting in memory", "rps", cfg.LeadRateLimitRPS, "burst", cfg.LeadRateLimitBurst)
	return middleware.NewRateLimiter(cfg.LeadRateLimitRPS, cfg.LeadRateLimitBurst)
}
