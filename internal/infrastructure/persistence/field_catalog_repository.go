package persistence

import (
	"context"
	"errors"

	"github.com/commhub/backend/internal/domain/communication"
	"github.com/commhub/backend/internal/domain/shared"
	"github.com/commhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFieldCatalogRepository implements communication.FieldCatalogRepository using GORM
type GormFieldCatalogRepository struct {
	db *gorm.DB
}

// NewGormFieldCatalogRepository creates a new GormFieldCatalogRepository
func NewGormFieldCatalogRepository(db *gorm.DB) *GormFieldCatalogRepository {
	return &GormFieldCatalogRepository{db: db}
}

// FindAll returns the whole catalog ordered by key
func (r *GormFieldCatalogRepository) FindAll(ctx context.Context) ([]communication.FieldEntry, error) {
	var rows []models.FieldModel
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]communication.FieldEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// FindByKey finds one catalog entry
func (r *GormFieldCatalogRepository) FindByKey(ctx context.Context, key string) (*communication.FieldEntry, error) {
	var model models.FieldModel
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	entry := model.ToDomain()
	return &entry, nil
}

// Upsert inserts the entry or replaces the one with the same key
func (r *GormFieldCatalogRepository) Upsert(ctx context.Context, entry *communication.FieldEntry) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"label", "source_path", "data_type", "updated_at"}),
	}).Create(models.FieldModelFromDomain(entry)).Error
}

// Delete removes a catalog entry
func (r *GormFieldCatalogRepository) Delete(ctx context.Context, key string) error {
	result := r.db.WithContext(ctx).Where("key = ?", key).Delete(&models.FieldModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ communication.FieldCatalogRepository = (*GormFieldCatalogRepository)(nil)
