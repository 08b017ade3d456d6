package persistence

import (
	"context"
	"errors"

	"github.com/commhub/backend/internal/domain/communication"
	"github.com/commhub/backend/internal/domain/shared"
	"github.com/commhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLetterRepository is the generation ledger. It only inserts and reads.
type GormLetterRepository struct {
	db *gorm.DB
}

// NewGormLetterRepository creates a new GormLetterRepository
func NewGormLetterRepository(db *gorm.DB) *GormLetterRepository {
	return &GormLetterRepository{db: db}
}

// Create appends a ledger entry
func (r *GormLetterRepository) Create(ctx context.Context, letter *communication.Letter) error {
	return r.db.WithContext(ctx).Create(models.LetterModelFromDomain(letter)).Error
}

// FindByIDForTenant finds a ledger entry within a specific tenant
func (r *GormLetterRepository) FindByIDForTenant(ctx context.Context, tenantID, id string) (*communication.Letter, error) {
	var model models.LetterModel
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

// FindAllForTenant lists ledger entries of a tenant, newest first by default
func (r *GormLetterRepository) FindAllForTenant(ctx context.Context, tenantID string, filter shared.Filter) ([]communication.Letter, error) {
	filter = filter.Normalize()
	var rows []models.LetterModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LetterModel{}).Where("tenant_id = ?", tenantID), filter).
		Order(letterSort.clause(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	letters := make([]communication.Letter, len(rows))
	for i := range rows {
		letters[i] = *rows[i].ToDomain()
	}
	return letters, nil
}

// CountForTenant counts ledger entries matching the filter
func (r *GormLetterRepository) CountForTenant(ctx context.Context, tenantID string, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LetterModel{}).Where("tenant_id = ?", tenantID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormLetterRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for _, column := range []string{"member_id", "template_id"} {
		if value, ok := filter.Equals[column]; ok {
			query = query.Where(column+" = ?", value)
		}
	}
	return query
}

var _ communication.LetterRepository = (*GormLetterRepository)(nil)
