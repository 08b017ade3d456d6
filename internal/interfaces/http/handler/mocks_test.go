package handler

import (
	"context"

	commapp "github.com/commhub/backend/internal/application/communication"
	"github.com/stretchr/testify/mock"
)

type mockLetterService struct {
	mock.Mock
}

func (m *mockLetterService) GenerateLetter(ctx context.Context, caller commapp.Caller, req commapp.GenerateLetterRequest) (*commapp.GenerateLetterResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commapp.GenerateLetterResponse), args.Error(1)
}

func (m *mockLetterService) GetLetter(ctx context.Context, caller commapp.Caller, letterID string) (*commapp.LetterResponse, error) {
	args := m.Called(ctx, caller, letterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commapp.LetterResponse), args.Error(1)
}

func (m *mockLetterService) ListLetters(ctx context.Context, caller commapp.Caller, req commapp.ListLettersRequest) ([]commapp.LetterResponse, int64, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]commapp.LetterResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockLetterService) RefreshDownloadURL(ctx context.Context, caller commapp.Caller, letterID string) (*commapp.DownloadURLResponse, error) {
	args := m.Called(ctx, caller, letterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commapp.DownloadURLResponse), args.Error(1)
}

type mockTemplateService struct {
	mock.Mock
}

func (m *mockTemplateService) CreateTemplate(ctx context.Context, caller commapp.Caller, req commapp.CreateTemplateRequest, file commapp.UploadedFile) (*commapp.TemplateResponse, error) {
	args := m.Called(ctx, caller, req, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commapp.TemplateResponse), args.Error(1)
}

func (m *mockTemplateService) GetTemplate(ctx context.Context, caller commapp.Caller, templateID string) (*commapp.TemplateResponse, error) {
	args := m.Called(ctx, caller, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commapp.TemplateResponse), args.Error(1)
}

func (m *mockTemplateService) ListTemplates(ctx context.Context, caller commapp.Caller, req commapp.ListTemplatesRequest) ([]commapp.TemplateResponse, int64, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]commapp.TemplateResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockTemplateService) UpdateTemplate(ctx context.Context, caller commapp.Caller, templateID string, req commapp.UpdateTemplateRequest) (*commapp.TemplateResponse, error) {
	args := m.Called(ctx, caller, templateID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commapp.TemplateResponse), args.Error(1)
}

func (m *mockTemplateService) ReplaceFile(ctx context.Context, caller commapp.Caller, templateID string, file commapp.UploadedFile) (*commapp.TemplateResponse, error) {
	args := m.Called(ctx, caller, templateID, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commapp.TemplateResponse), args.Error(1)
}

func (m *mockTemplateService) DownloadFile(ctx context.Context, caller commapp.Caller, templateID string) (*commapp.TemplateFile, error) {
	args := m.Called(ctx, caller, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commapp.TemplateFile), args.Error(1)
}

func (m *mockTemplateService) DeleteTemplate(ctx context.Context, caller commapp.Caller, templateID string) error {
	return m.Called(ctx, caller, templateID).Error(0)
}

func (m *mockTemplateService) ExtractPlaceholders(ctx context.Context, caller commapp.Caller, templateID string) (*commapp.PlaceholdersResponse, error) {
	args := m.Called(ctx, caller, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commapp.PlaceholdersResponse), args.Error(1)
}

type mockFieldService struct {
	mock.Mock
}

func (m *mockFieldService) ListKeys(ctx context.Context) ([]commapp.FieldResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commapp.FieldResponse), args.Error(1)
}

func (m *mockFieldService) RegisterField(ctx context.Context, key string, req commapp.RegisterFieldRequest) (*commapp.FieldResponse, error) {
	args := m.Called(ctx, key, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commapp.FieldResponse), args.Error(1)
}

func (m *mockFieldService) DeleteField(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
