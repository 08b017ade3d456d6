package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/commhub/backend/internal/domain/communication"
	"github.com/commhub/backend/internal/domain/shared"
	"github.com/commhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTemplateRepository implements communication.TemplateRepository using GORM
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewGormTemplateRepository creates a new GormTemplateRepository
func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

// FindByIDForTenant finds a template by ID within a specific tenant
func (r *GormTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id string) (*communication.Template, error) {
	var model models.TemplateModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds templates for a tenant
func (r *GormTemplateRepository) FindAllForTenant(ctx context.Context, tenantID string, filter shared.Filter) ([]communication.Template, error) {
	filter = filter.Normalize()
	var rows []models.TemplateModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TemplateModel{}).Where("tenant_id = ?", tenantID), filter).
		Order(templateSort.clause(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	templates := make([]communication.Template, len(rows))
	for i := range rows {
		templates[i] = *rows[i].ToDomain()
	}
	return templates, nil
}

// CountForTenant returns the number of templates matching the filter
func (r *GormTemplateRepository) CountForTenant(ctx context.Context, tenantID string, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TemplateModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save saves a template (insert or update)
func (r *GormTemplateRepository) Save(ctx context.Context, template *communication.Template) error {
	return r.db.WithContext(ctx).Save(models.TemplateModelFromDomain(template)).Error
}

// DeleteForTenant deletes a template owned by the tenant
func (r *GormTemplateRepository) DeleteForTenant(ctx context.Context, tenantID, id string) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.TemplateModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormTemplateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	for _, column := range []string{"category", "template_type"} {
		if value, ok := filter.Equals[column]; ok {
			query = query.Where(column+" = ?", value)
		}
	}
	return query
}

var _ communication.TemplateRepository = (*GormTemplateRepository)(nil)
