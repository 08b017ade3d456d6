package communication_test

import (
	"context"
	"time"

	domain "github.com/commhub/backend/internal/domain/communication"
	"github.com/commhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id string) (*domain.Template, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Template), args.Error(1)
}

func (m *MockTemplateRepository) FindAllForTenant(ctx context.Context, tenantID string, filter shared.Filter) ([]domain.Template, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Template), args.Error(1)
}

func (m *MockTemplateRepository) CountForTenant(ctx context.Context, tenantID string, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTemplateRepository) Save(ctx context.Context, template *domain.Template) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) DeleteForTenant(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockLetterRepository struct {
	mock.Mock
}

func (m *MockLetterRepository) Create(ctx context.Context, letter *domain.Letter) error {
	args := m.Called(ctx, letter)
	return args.Error(0)
}

func (m *MockLetterRepository) FindByIDForTenant(ctx context.Context, tenantID, id string) (*domain.Letter, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Letter), args.Error(1)
}

func (m *MockLetterRepository) FindAllForTenant(ctx context.Context, tenantID string, filter shared.Filter) ([]domain.Letter, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Letter), args.Error(1)
}

func (m *MockLetterRepository) CountForTenant(ctx context.Context, tenantID string, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockFieldCatalogRepository struct {
	mock.Mock
}

func (m *MockFieldCatalogRepository) FindAll(ctx context.Context) ([]domain.FieldEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FieldEntry), args.Error(1)
}

func (m *MockFieldCatalogRepository) FindByKey(ctx context.Context, key string) (*domain.FieldEntry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FieldEntry), args.Error(1)
}

func (m *MockFieldCatalogRepository) Upsert(ctx context.Context, entry *domain.FieldEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockFieldCatalogRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Fetch(ctx context.Context, fileRef string) ([]byte, error) {
	args := m.Called(ctx, fileRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDocumentRepository) Create(ctx context.Context, fileName string, content []byte) (string, error) {
	args := m.Called(ctx, fileName, content)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentRepository) Replace(ctx context.Context, fileRef string, content []byte) error {
	args := m.Called(ctx, fileRef, content)
	return args.Error(0)
}

type MockMemberDataSource struct {
	mock.Mock
}

func (m *MockMemberDataSource) Aggregate(ctx context.Context, memberID string, catalog domain.FieldCatalog) (map[string]string, error) {
	args := m.Called(ctx, memberID, catalog)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

type MockMergeEngine struct {
	mock.Mock
}

func (m *MockMergeEngine) Merge(ctx context.Context, template []byte, data map[string]string) ([]byte, error) {
	args := m.Called(ctx, template, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockArtifactPublisher struct {
	mock.Mock
}

func (m *MockArtifactPublisher) Publish(ctx context.Context, tenantID, memberID string, data []byte) (domain.Artifact, error) {
	args := m.Called(ctx, tenantID, memberID, data)
	return args.Get(0).(domain.Artifact), args.Error(1)
}

func (m *MockArtifactPublisher) SignedURL(ctx context.Context, storagePath string) (string, time.Time, error) {
	args := m.Called(ctx, storagePath)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockArtifactPublisher) Discard(ctx context.Context, storagePath string) error {
	args := m.Called(ctx, storagePath)
	return args.Error(0)
}

// staticCatalog serves a fixed catalog
type staticCatalog struct {
	catalog domain.FieldCatalog
	err     error
}

func (c staticCatalog) Catalog(context.Context) (domain.FieldCatalog, error) {
	return c.catalog, c.err
}
