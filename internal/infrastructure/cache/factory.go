package cache

import (
	"context"

	"github.com/commhub/backend/internal/domain/communication"
	"github.com/commhub/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewCatalogCache builds the cache selected by catalog.cache_driver. When
// Redis is selected but unreachable the in-memory cache is used instead.
// The returned client is nil unless Redis is in use; the caller closes it.
func NewCatalogCache(ctx context.Context, cfg config.CatalogConfig, redisCfg config.RedisConfig, logger *zap.Logger) (communication.CatalogCache, *redis.Client) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheDriver != "redis" {
		return NewInMemoryCatalogCache(cfg.CacheTTL), nil
	}

	client, err := NewRedisClient(ctx, redisCfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory field catalog cache",
			zap.String("addr", redisCfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryCatalogCache(cfg.CacheTTL), nil
	}
	logger.Info("Using Redis field catalog cache", zap.String("addr", redisCfg.Addr()))
	return NewRedisCatalogCache(client, cfg.CacheTTL, logger), client
}
