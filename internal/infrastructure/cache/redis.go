package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/commhub/backend/internal/domain/communication"
	"github.com/commhub/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCatalogKey = "commhub:communication:field_catalog"

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisCatalogCache shares the catalog snapshot between instances
type RedisCatalogCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// cachedField is the JSON form of a catalog entry
type cachedField struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	SourcePath string `json:"source_path"`
	DataType   string `json:"data_type"`
}

// NewRedisCatalogCache creates a Redis cache using an existing client
func NewRedisCatalogCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCatalogCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCatalogCache{client: client, key: defaultCatalogKey, ttl: ttl, logger: logger}
}

// Get loads the snapshot. A corrupt entry is dropped and reported as a miss.
func (c *RedisCatalogCache) Get(ctx context.Context) (communication.FieldCatalog, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read field catalog cache: %w", err)
	}

	var fields []cachedField
	if err := json.Unmarshal(raw, &fields); err != nil {
		c.logger.Warn("Dropping corrupt field catalog cache entry", zap.Error(err))
		_ = c.client.Del(ctx, c.key).Err()
		return nil, false, nil
	}
	catalog := make(communication.FieldCatalog, 0, len(fields))
	for _, f := range fields {
		catalog = append(catalog, communication.FieldEntry{
			Key:        f.Key,
			Label:      f.Label,
			SourcePath: f.SourcePath,
			DataType:   communication.FieldDataType(f.DataType),
		})
	}
	return catalog, true, nil
}

// Set stores the snapshot with the cache TTL
func (c *RedisCatalogCache) Set(ctx context.Context, catalog communication.FieldCatalog) error {
	fields := make([]cachedField, 0, len(catalog))
	for _, f := range catalog {
		fields = append(fields, cachedField{
			Key:        f.Key,
			Label:      f.Label,
			SourcePath: f.SourcePath,
			DataType:   string(f.DataType),
		})
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode field catalog: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write field catalog cache: %w", err)
	}
	return nil
}

// Invalidate deletes the shared snapshot
func (c *RedisCatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate field catalog cache: %w", err)
	}
	return nil
}

var _ communication.CatalogCache = (*RedisCatalogCache)(nil)
