package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commhub/backend/internal/domain/communication"
	"github.com/commhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultSignedURLTTL is how long a letter download link stays valid
const DefaultSignedURLTTL = time.Hour

// ArtifactPublisher uploads rendered letters and signs download links.
// Signed URLs are handed to callers only; the storage path is what gets persisted.
type ArtifactPublisher struct {
	store  ObjectStore
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// PublisherOption configures an ArtifactPublisher
type PublisherOption func(*ArtifactPublisher)

// WithSignedURLTTL overrides the download link lifetime
func WithSignedURLTTL(ttl time.Duration) PublisherOption {
	return func(p *ArtifactPublisher) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithPublisherClock overrides time.Now
func WithPublisherClock(now func() time.Time) PublisherOption {
	return func(p *ArtifactPublisher) {
		p.now = now
	}
}

// WithPublisherLogger sets the logger
func WithPublisherLogger(logger *zap.Logger) PublisherOption {
	return func(p *ArtifactPublisher) {
		p.logger = logger
	}
}

// NewArtifactPublisher creates a publisher over an object store
func NewArtifactPublisher(store ObjectStore, opts ...PublisherOption) *ArtifactPublisher {
	p := &ArtifactPublisher{
		store:  store,
		ttl:    DefaultSignedURLTTL,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish stores data at tenantId/memberId/letter-<uuid>.docx and returns the
// artifact with a signed URL valid for the TTL from the upload instant.
func (p *ArtifactPublisher) Publish(ctx context.Context, tenantID, memberID string, data []byte) (communication.Artifact, error) {
	storagePath, fileName, err := communication.NewArtifactPath(tenantID, memberID)
	if err != nil {
		return communication.Artifact{}, err
	}

	if err := p.store.Upload(ctx, storagePath, data, communication.DocxContentType); err != nil {
		p.logger.Error("Failed to upload letter",
			zap.String("artifact_path", storagePath),
			zap.Error(err),
		)
		return communication.Artifact{}, communication.Failure(communication.ErrPublishFailed, err)
	}
	uploadedAt := p.now()

	signedURL, expiresAt, err := p.sign(ctx, storagePath, uploadedAt)
	if err != nil {
		p.logger.Error("Failed to sign letter URL",
			zap.String("artifact_path", storagePath),
			zap.Error(err),
		)
		return communication.Artifact{Path: storagePath}, communication.Failure(communication.ErrPublishFailed, err)
	}

	p.logger.Info("Letter published",
		zap.String("artifact_path", storagePath),
		zap.Int("size", len(data)),
		zap.Time("expires_at", expiresAt),
	)
	return communication.Artifact{
		Path:        storagePath,
		FileName:    fileName,
		ContentType: communication.DocxContentType,
		SignedURL:   signedURL,
		ExpiresAt:   expiresAt,
	}, nil
}

// SignedURL mints a fresh download link for an already published artifact
func (p *ArtifactPublisher) SignedURL(ctx context.Context, storagePath string) (string, time.Time, error) {
	exists, err := p.store.ObjectExists(ctx, storagePath)
	if err != nil {
		return "", time.Time{}, communication.Failure(communication.ErrPublishFailed, err)
	}
	if !exists {
		return "", time.Time{}, shared.NotFound("Letter file no longer exists")
	}
	url, expiresAt, err := p.sign(ctx, storagePath, p.now())
	if err != nil {
		return "", time.Time{}, communication.Failure(communication.ErrPublishFailed, err)
	}
	return url, expiresAt, nil
}

// Discard deletes a published artifact
func (p *ArtifactPublisher) Discard(ctx context.Context, storagePath string) error {
	if storagePath == "" {
		return errors.New("storage path is required")
	}
	if err := p.store.DeleteObject(ctx, storagePath); err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}

func (p *ArtifactPublisher) sign(ctx context.Context, storagePath string, from time.Time) (string, time.Time, error) {
	expiresAt := from.Add(p.ttl)
	remaining := expiresAt.Sub(p.now())
	if remaining <= 0 {
		return "", time.Time{}, errors.New("signing window elapsed before URL was generated")
	}
	url, _, err := p.store.GenerateDownloadURL(ctx, storagePath, remaining)
	if err != nil {
		return "", time.Time{}, err
	}
	return url, expiresAt, nil
}
