package models

import (
	"time"

	"github.com/commhub/backend/internal/domain/shared"
)

// TenantAggregateModel holds the common columns of tenant-scoped aggregates.
// Ids are 24-hex object ids stored as text.
type TenantAggregateModel struct {
	ID        string    `gorm:"type:varchar(24);primaryKey"`
	TenantID  string    `gorm:"type:varchar(64);not null;index"`
	CreatedBy string    `gorm:"type:varchar(64)"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int       `gorm:"not null;default:1"`
}

// FromDomainTenantAggregateRoot populates the model from a domain aggregate root
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(t shared.TenantAggregateRoot) {
	m.ID = t.ID
	m.TenantID = t.TenantID
	m.CreatedBy = t.CreatedBy
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
	m.Version = t.Version
}

// ToTenantAggregateRoot builds the domain aggregate root
func (m *TenantAggregateModel) ToTenantAggregateRoot() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		TenantID:  m.TenantID,
		CreatedBy: m.CreatedBy,
	}
}
