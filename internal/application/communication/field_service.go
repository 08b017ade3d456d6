package communication

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/commhub/backend/internal/domain/communication"
	"github.com/commhub/backend/internal/domain/shared"
	"github.com/commhub/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// FieldCatalogService manages the global field catalog and serves cached
// snapshots of it to the template and letter services.
type FieldCatalogService struct {
	repo   communication.FieldCatalogRepository
	cache  communication.CatalogCache
	logger *zap.Logger

	// generation is bumped on every catalog write before the cache is cleared
	generation atomic.Uint64
}

// NewFieldCatalogService creates a FieldCatalogService. cache may be nil.
func NewFieldCatalogService(
	repo communication.FieldCatalogRepository,
	cache communication.CatalogCache,
	logger *zap.Logger,
) *FieldCatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FieldCatalogService{repo: repo, cache: cache, logger: logger}
}

var _ CatalogProvider = (*FieldCatalogService)(nil)

// Catalog returns the catalog, reading through the cache. Cache failures
// fall back to the database.
func (s *FieldCatalogService) Catalog(ctx context.Context) (communication.FieldCatalog, error) {
	log := logger.L(ctx, s.logger)
	if s.cache != nil {
		catalog, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			log.Warn("Field catalog cache read failed", zap.Error(err))
		case ok:
			return catalog, nil
		}
	}

	gen := s.generation.Load()
	entries, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load field catalog: %w", err)
	}
	catalog := communication.FieldCatalog(entries)

	if s.cache != nil {
		s.fill(ctx, gen, catalog)
	}
	return catalog, nil
}

// ListKeys lists every catalog entry
func (s *FieldCatalogService) ListKeys(ctx context.Context) ([]FieldResponse, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]FieldResponse, len(catalog))
	for i, f := range catalog {
		items[i] = toFieldResponse(f)
	}
	return items, nil
}

// RegisterField creates or replaces the entry for key
func (s *FieldCatalogService) RegisterField(ctx context.Context, key string, req RegisterFieldRequest) (*FieldResponse, error) {
	entry, err := communication.NewFieldEntry(key, req.Label, req.SourcePath, communication.FieldDataType(req.DataType))
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save field: %w", err)
	}
	s.invalidate(ctx)

	logger.L(ctx, s.logger).Info("Field registered",
		zap.String("key", entry.Key),
		zap.String("source_path", entry.SourcePath),
		zap.String("data_type", string(entry.DataType)),
	)
	resp := toFieldResponse(*entry)
	return &resp, nil
}

// DeleteField removes a catalog entry
func (s *FieldCatalogService) DeleteField(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("Field not found")
		}
		return fmt.Errorf("failed to delete field: %w", err)
	}
	s.invalidate(ctx)
	logger.L(ctx, s.logger).Info("Field deleted", zap.String("key", key))
	return nil
}

// fill caches a snapshot loaded at generation gen. A write that lands while
// the snapshot is in flight drops it again, so a stale read never outlives
// the write that superseded it.
func (s *FieldCatalogService) fill(ctx context.Context, gen uint64, catalog communication.FieldCatalog) {
	log := logger.L(ctx, s.logger)
	if s.generation.Load() != gen {
		log.Debug("Field catalog changed during load, skipping cache fill")
		return
	}
	if err := s.cache.Set(ctx, catalog); err != nil {
		log.Warn("Field catalog cache write failed", zap.Error(err))
		return
	}
	if s.generation.Load() != gen {
		s.clearCache(ctx)
	}
}

func (s *FieldCatalogService) invalidate(ctx context.Context) {
	s.generation.Add(1)
	s.clearCache(ctx)
}

func (s *FieldCatalogService) clearCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.L(ctx, s.logger).Warn("Field catalog cache invalidation failed", zap.Error(err))
	}
}
