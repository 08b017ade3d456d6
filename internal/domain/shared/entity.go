package shared

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BaseEntity carries identity and timestamps.
// IDs are 24-character hexadecimal object identifiers.
type BaseEntity struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewID mints a new 24-hex object identifier
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// BaseAggregateRoot adds a version counter used for optimistic locking
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// IncrementVersion bumps the version and the update timestamp
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
	a.UpdatedAt = time.Now().UTC()
}

// TenantAggregateRoot is an aggregate owned by exactly one tenant
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  string
	CreatedBy string
}

// NewTenantAggregateRootWithCreator starts a version-1 aggregate for tenantID
func NewTenantAggregateRootWithCreator(tenantID, createdBy string) TenantAggregateRoot {
	now := time.Now().UTC()
	return TenantAggregateRoot{
		BaseAggregateRoot: BaseAggregateRoot{
			BaseEntity: BaseEntity{ID: NewID(), CreatedAt: now, UpdatedAt: now},
			Version:    1,
		},
		TenantID:  tenantID,
		CreatedBy: createdBy,
	}
}

// BelongsTo reports whether the aggregate is owned by tenantID
func (t *TenantAggregateRoot) BelongsTo(tenantID string) bool {
	return tenantID != "" && t.TenantID == tenantID
}
