package communication

import (
	"context"
	"time"

	"github.com/commhub/backend/internal/domain/communication"
	"github.com/commhub/backend/internal/domain/shared"
)

// DocumentRepository stores template files outside the database
type DocumentRepository interface {
	Fetch(ctx context.Context, fileRef string) ([]byte, error)
	Create(ctx context.Context, fileName string, content []byte) (string, error)
	Replace(ctx context.Context, fileRef string, content []byte) error
}

// MemberDataSource collects the catalog fields of one member from upstream services
type MemberDataSource interface {
	Aggregate(ctx context.Context, memberID string, catalog communication.FieldCatalog) (map[string]string, error)
}

// ArtifactPublisher stores rendered letters and signs download links
type ArtifactPublisher interface {
	Publish(ctx context.Context, tenantID, memberID string, data []byte) (communication.Artifact, error)
	SignedURL(ctx context.Context, storagePath string) (string, time.Time, error)
	Discard(ctx context.Context, storagePath string) error
}

// PlaceholderExtractor reads the placeholder tokens of a template package
type PlaceholderExtractor func(data []byte) (communication.PlaceholderSet, error)

// CatalogProvider returns the current field catalog
type CatalogProvider interface {
	Catalog(ctx context.Context) (communication.FieldCatalog, error)
}

// Caller is the authenticated identity a request runs as
type Caller struct {
	TenantID string
	UserID   string
}

// Validate refuses callers without both tenant and user
func (c Caller) Validate() error {
	if c.TenantID == "" || c.UserID == "" {
		return shared.NewDomainError(shared.CodeUnauthorized, "Caller identity is incomplete")
	}
	return nil
}
