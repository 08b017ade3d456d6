package main

import (
	"context"
	"fmt"

	"github.com/commhub/backend/internal/infrastructure/config"
	"github.com/commhub/backend/internal/infrastructure/docrepo"
	"github.com/commhub/backend/internal/infrastructure/memberdata"
	"github.com/commhub/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

func newDocumentRepository(cfg config.DocumentRepositoryConfig, log *zap.Logger) (*docrepo.Gateway, error) {
	gwCfg := docrepo.Config{
		BaseURL:      cfg.BaseURL,
		DriveID:      cfg.DriveID,
		FolderID:     cfg.FolderID,
		TokenURL:     cfg.TokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       cfg.Scopes,
		AllowedHosts: cfg.AllowedHosts,
		Timeout:      cfg.Timeout,
	}
	opts := []docrepo.Option{docrepo.WithLogger(log)}
	if cfg.TokenMargin > 0 {
		opts = append(opts, docrepo.WithTokenCache(
			docrepo.NewTokenCache(docrepo.ClientCredentials(gwCfg), docrepo.WithMargin(cfg.TokenMargin)),
		))
	}
	return docrepo.NewGateway(gwCfg, opts...)
}

func newMemberDataSource(cfg config.MemberDataConfig, log *zap.Logger) (*memberdata.Aggregator, error) {
	sources := make([]memberdata.Source, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		sources = append(sources, memberdata.Source{Name: s.Name, BaseURL: s.BaseURL, Path: s.Path})
	}
	return memberdata.NewAggregator(memberdata.Config{
		Sources:      sources,
		AllowedHosts: cfg.AllowedHosts,
		Timeout:      cfg.Timeout,
		DateLayout:   cfg.DateLayout,
	}, memberdata.WithLogger(log))
}

// newArtifactPublisher selects the object store named by storage.driver
func newArtifactPublisher(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (*storage.ArtifactPublisher, error) {
	var store storage.ObjectStore
	switch cfg.Driver {
	case "memory":
		log.Warn("Using in-memory letter storage; download links are not reachable outside this process")
		store = storage.NewMemoryObjectStorage()
	case "", "s3":
		s3, err := storage.NewS3ObjectStorage(&cfg, storage.WithLogger(log), storage.WithPresignExpiration(cfg.PresignExpiration))
		if err != nil {
			return nil, err
		}
		if cfg.EnsureBucket {
			if err := s3.EnsureBucket(ctx); err != nil {
				return nil, err
			}
		}
		store = s3
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	return storage.NewArtifactPublisher(store,
		storage.WithSignedURLTTL(cfg.PresignExpiration),
		storage.WithPublisherLogger(log),
	), nil
}
