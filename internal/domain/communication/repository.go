package communication

import (
	"context"

	"github.com/commhub/backend/internal/domain/shared"
)

// TemplateRepository defines persistence for templates. Every lookup is
// scoped by tenant; a template of another tenant is reported as not found.
type TemplateRepository interface {
	// FindByIDForTenant finds a template by ID within a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id string) (*Template, error)

	// FindAllForTenant finds templates for a tenant.
	// Supported filter keys: category, template_type.
	FindAllForTenant(ctx context.Context, tenantID string, filter shared.Filter) ([]Template, error)

	// CountForTenant counts templates matching the filter
	CountForTenant(ctx context.Context, tenantID string, filter shared.Filter) (int64, error)

	// Save inserts or updates a template
	Save(ctx context.Context, template *Template) error

	// DeleteForTenant hard-deletes a template
	DeleteForTenant(ctx context.Context, tenantID, id string) error
}

// FieldCatalogRepository defines persistence for the global field catalog
type FieldCatalogRepository interface {
	FindAll(ctx context.Context) ([]FieldEntry, error)
	FindByKey(ctx context.Context, key string) (*FieldEntry, error)
	// Upsert inserts or replaces the entry with the same key
	Upsert(ctx context.Context, entry *FieldEntry) error
	Delete(ctx context.Context, key string) error
}

// LetterRepository is the append-only generation ledger
type LetterRepository interface {
	Create(ctx context.Context, letter *Letter) error
	FindByIDForTenant(ctx context.Context, tenantID, id string) (*Letter, error)
	// FindAllForTenant supports filter keys member_id and template_id
	FindAllForTenant(ctx context.Context, tenantID string, filter shared.Filter) ([]Letter, error)
	CountForTenant(ctx context.Context, tenantID string, filter shared.Filter) (int64, error)
}

// MergeEngine renders a template package with a flat key/value map.
// Tokens without a value must not fail the render.
type MergeEngine interface {
	Merge(ctx context.Context, template []byte, data map[string]string) ([]byte, error)
}

// CatalogCache holds a snapshot of the field catalog. A miss is reported
// with ok=false and no error.
type CatalogCache interface {
	Get(ctx context.Context) (catalog FieldCatalog, ok bool, err error)
	Set(ctx context.Context, catalog FieldCatalog) error
	Invalidate(ctx context.Context) error
}
