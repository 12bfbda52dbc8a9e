package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/brainsait/drg-suite/internal/domain"
)

const statusKeyPrefix = "drg:claim-status:"

// StatusCache is a Redis-backed cache for claim-status answers. A nil
// *StatusCache is valid and caches nothing, so callers need no nil checks.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewStatusCache connects to Redis using the configured URL. The connection
// is verified so a misconfigured cache fails at startup, not mid-request.
func NewStatusCache(ctx context.Context, cfg domain.CacheConfig, logger *logrus.Logger) (*StatusCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.PoolTimeout > 0 {
		opts.PoolTimeout = cfg.PoolTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	ttl := cfg.DefaultTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &StatusCache{client: client, ttl: ttl, logger: logger}, nil
}

// Get returns the cached status for a claim. Cache errors are logged and
// treated as misses.
func (c *StatusCache) Get(ctx context.Context, claimID string) (*ClaimStatus, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, statusKeyPrefix+claimID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).Warn("claim-status cache read failed")
		}
		return nil, false
	}
	var status ClaimStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		c.logger.WithError(err).Warn("claim-status cache entry corrupt")
		return nil, false
	}
	return &status, true
}

// Set stores a status answer for the configured TTL. Failures are logged
// only; the status check already succeeded.
func (c *StatusCache) Set(ctx context.Context, claimID string, status *ClaimStatus) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statusKeyPrefix+claimID, raw, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("claim-status cache write failed")
	}
}

// Close releases the Redis connection pool.
func (c *StatusCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
