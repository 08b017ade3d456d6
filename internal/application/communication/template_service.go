package communication

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/commhub/backend/internal/domain/communication"
	"github.com/commhub/backend/internal/domain/shared"
	"github.com/commhub/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// TemplateService manages letter templates. Template files live in the
// document repository; the database keeps metadata and the extracted
// placeholder list.
type TemplateService struct {
	repo      communication.TemplateRepository
	documents DocumentRepository
	extract   PlaceholderExtractor
	catalog   CatalogProvider
	logger    *zap.Logger
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(
	repo communication.TemplateRepository,
	documents DocumentRepository,
	extract PlaceholderExtractor,
	catalog CatalogProvider,
	logger *zap.Logger,
) *TemplateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{
		repo:      repo,
		documents: documents,
		extract:   extract,
		catalog:   catalog,
		logger:    logger,
	}
}

// CreateTemplate stores the uploaded file and registers a template for it
func (s *TemplateService) CreateTemplate(ctx context.Context, caller Caller, req CreateTemplateRequest, file UploadedFile) (*TemplateResponse, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	templateType := communication.TemplateType(strings.ToUpper(strings.TrimSpace(req.TemplateType)))
	if err := communication.ValidateTemplateMetadata(req.Name, req.Description, req.Category, templateType); err != nil {
		return nil, err
	}
	if len(file.Content) == 0 {
		return nil, shared.InvalidInput("Template file is required")
	}

	placeholders, err := s.extract(file.Content)
	if err != nil {
		return nil, err
	}

	fileRef, err := s.documents.Create(ctx, file.Name, file.Content)
	if err != nil {
		return nil, err
	}

	template, err := communication.NewTemplate(caller.TenantID, caller.UserID, req.Name, templateType, fileRef, file.Name, placeholders)
	if err != nil {
		return nil, err
	}
	if req.Description != "" || req.Category != "" {
		if err := template.ApplyPatch(communication.TemplatePatch{
			Description: &req.Description,
			Category:    &req.Category,
		}); err != nil {
			return nil, err
		}
	}

	log := logger.L(ctx, s.logger)
	if err := s.repo.Save(ctx, template); err != nil {
		log.Error("Template file stored but template record not saved",
			zap.String("file_ref", fileRef),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	log.Info("Template created",
		zap.String("template_id", template.ID),
		zap.String("file_ref", fileRef),
		zap.Int("placeholders", placeholders.Len()),
	)

	resp := toTemplateResponse(template)
	resp.UnknownPlaceholders = s.unknownPlaceholders(ctx, template.ID, placeholders)
	return resp, nil
}

// GetTemplate retrieves a template of the caller's tenant
func (s *TemplateService) GetTemplate(ctx context.Context, caller Caller, templateID string) (*TemplateResponse, error) {
	template, err := s.load(ctx, caller, templateID)
	if err != nil {
		return nil, err
	}
	return toTemplateResponse(template), nil
}

// ListTemplates lists the caller's templates
func (s *TemplateService) ListTemplates(ctx context.Context, caller Caller, req ListTemplatesRequest) ([]TemplateResponse, int64, error) {
	if err := caller.Validate(); err != nil {
		return nil, 0, err
	}
	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}.Where("category", req.Category).Where("template_type", strings.ToUpper(req.TemplateType))

	templates, err := s.repo.FindAllForTenant(ctx, caller.TenantID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}
	total, err := s.repo.CountForTenant(ctx, caller.TenantID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count templates: %w", err)
	}

	items := make([]TemplateResponse, len(templates))
	for i := range templates {
		items[i] = *toTemplateResponse(&templates[i])
	}
	return items, total, nil
}

// UpdateTemplate patches template metadata
func (s *TemplateService) UpdateTemplate(ctx context.Context, caller Caller, templateID string, req UpdateTemplateRequest) (*TemplateResponse, error) {
	template, err := s.load(ctx, caller, templateID)
	if err != nil {
		return nil, err
	}

	patch := communication.TemplatePatch{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.TemplateType != nil {
		tt := communication.TemplateType(strings.ToUpper(strings.TrimSpace(*req.TemplateType)))
		patch.TemplateType = &tt
	}
	if err := template.ApplyPatch(patch); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	logger.L(ctx, s.logger).Info("Template updated", zap.String("template_id", template.ID))
	return toTemplateResponse(template), nil
}

// ReplaceFile overwrites the stored file in place and re-extracts its placeholders.
// The file reference does not change.
func (s *TemplateService) ReplaceFile(ctx context.Context, caller Caller, templateID string, file UploadedFile) (*TemplateResponse, error) {
	template, err := s.load(ctx, caller, templateID)
	if err != nil {
		return nil, err
	}
	if len(file.Content) == 0 {
		return nil, shared.InvalidInput("Template file is required")
	}

	placeholders, err := s.extract(file.Content)
	if err != nil {
		return nil, err
	}
	if err := s.documents.Replace(ctx, template.FileRef, file.Content); err != nil {
		return nil, err
	}

	template.ReplaceContent(file.Name, placeholders)
	if err := s.repo.Save(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}

	logger.L(ctx, s.logger).Info("Template file replaced",
		zap.String("template_id", template.ID),
		zap.String("file_ref", template.FileRef),
		zap.Int("placeholders", placeholders.Len()),
	)
	resp := toTemplateResponse(template)
	resp.UnknownPlaceholders = s.unknownPlaceholders(ctx, template.ID, placeholders)
	return resp, nil
}

// DownloadFile returns the stored template document
func (s *TemplateService) DownloadFile(ctx context.Context, caller Caller, templateID string) (*TemplateFile, error) {
	template, err := s.load(ctx, caller, templateID)
	if err != nil {
		return nil, err
	}
	content, err := s.documents.Fetch(ctx, template.FileRef)
	if err != nil {
		return nil, err
	}
	name := template.FileName
	if name == "" {
		name = template.ID + ".docx"
	}
	return &TemplateFile{
		FileName:    name,
		ContentType: communication.DocxContentType,
		Content:     content,
	}, nil
}

// DeleteTemplate removes a template record. Letters already generated from
// it stay in the ledger.
func (s *TemplateService) DeleteTemplate(ctx context.Context, caller Caller, templateID string) error {
	if err := caller.Validate(); err != nil {
		return err
	}
	if err := communication.ValidateRecordID(templateID); err != nil {
		return err
	}
	if err := s.repo.DeleteForTenant(ctx, caller.TenantID, templateID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return templateNotFound()
		}
		return fmt.Errorf("failed to delete template: %w", err)
	}
	logger.L(ctx, s.logger).Info("Template deleted", zap.String("template_id", templateID))
	return nil
}

// ExtractPlaceholders reads the placeholders of the stored file and compares
// them with the field catalog.
func (s *TemplateService) ExtractPlaceholders(ctx context.Context, caller Caller, templateID string) (*PlaceholdersResponse, error) {
	template, err := s.load(ctx, caller, templateID)
	if err != nil {
		return nil, err
	}
	content, err := s.documents.Fetch(ctx, template.FileRef)
	if err != nil {
		return nil, err
	}
	placeholders, err := s.extract(content)
	if err != nil {
		return nil, err
	}
	unknown := s.unknownPlaceholders(ctx, template.ID, placeholders)
	if unknown == nil {
		unknown = []string{}
	}
	return &PlaceholdersResponse{
		TemplateID:          template.ID,
		Placeholders:        placeholders.Names(),
		UnknownPlaceholders: unknown,
	}, nil
}

func (s *TemplateService) load(ctx context.Context, caller Caller, templateID string) (*communication.Template, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if err := communication.ValidateRecordID(templateID); err != nil {
		return nil, err
	}
	template, err := s.repo.FindByIDForTenant(ctx, caller.TenantID, templateID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, templateNotFound()
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

// unknownPlaceholders reports tokens without a catalog entry. They are
// allowed; a letter renders them empty.
func (s *TemplateService) unknownPlaceholders(ctx context.Context, templateID string, placeholders communication.PlaceholderSet) []string {
	log := logger.L(ctx, s.logger)
	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		log.Warn("Could not compare placeholders with field catalog", zap.Error(err))
		return nil
	}
	unknown := placeholders.Missing(catalog.Has)
	if len(unknown) > 0 {
		log.Warn("Template uses placeholders missing from the field catalog",
			zap.String("template_id", templateID),
			zap.Strings("placeholders", unknown),
		)
	}
	return unknown
}

func templateNotFound() error {
	return shared.NotFound("Template not found")
}
