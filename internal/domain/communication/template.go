package communication

import (
	"strings"

	"github.com/commhub/backend/internal/domain/shared"
)

// TemplateType classifies a template
type TemplateType string

const (
	TemplateTypeLetter    TemplateType = "LETTER"
	TemplateTypeNotice    TemplateType = "NOTICE"
	TemplateTypeStatement TemplateType = "STATEMENT"
	TemplateTypeOther     TemplateType = "OTHER"
)

// IsValid checks if the TemplateType is a valid value
func (t TemplateType) IsValid() bool {
	switch t {
	case TemplateTypeLetter, TemplateTypeNotice, TemplateTypeStatement, TemplateTypeOther:
		return true
	}
	return false
}

// String returns the string representation of TemplateType
func (t TemplateType) String() string {
	return string(t)
}

const (
	maxTemplateNameLength     = 100
	maxTemplateDescLength     = 500
	maxTemplateCategoryLength = 50
)

// Template is a tenant-owned letter template. The document itself lives in
// the external document repository and is addressed by FileRef.
type Template struct {
	shared.TenantAggregateRoot
	Name         string
	Description  string
	Category     string
	TemplateType TemplateType
	FileRef      string // opaque id in the document repository
	FileName     string // original upload name
	Placeholders PlaceholderSet
}

// NewTemplate creates a template bound to an already stored file
func NewTemplate(
	tenantID, createdBy string,
	name string,
	templateType TemplateType,
	fileRef, fileName string,
	placeholders PlaceholderSet,
) (*Template, error) {
	if tenantID == "" {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if err := validateTemplateName(name); err != nil {
		return nil, err
	}
	if templateType == "" {
		templateType = TemplateTypeLetter
	}
	if !templateType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TEMPLATE_TYPE", "Invalid template type")
	}
	if strings.TrimSpace(fileRef) == "" {
		return nil, shared.NewDomainError("INVALID_FILE_REF", "Template file reference cannot be empty")
	}

	return &Template{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Name:                strings.TrimSpace(name),
		TemplateType:        templateType,
		FileRef:             fileRef,
		FileName:            strings.TrimSpace(fileName),
		Placeholders:        placeholders,
	}, nil
}

// TemplatePatch carries optional metadata changes. Nil fields are left untouched.
type TemplatePatch struct {
	Name         *string
	Description  *string
	Category     *string
	TemplateType *TemplateType
}

// ApplyPatch updates template metadata
func (t *Template) ApplyPatch(p TemplatePatch) error {
	if p.Name != nil {
		if err := validateTemplateName(*p.Name); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := t.validateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Category != nil && len(strings.TrimSpace(*p.Category)) > maxTemplateCategoryLength {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 50 characters")
	}
	if p.TemplateType != nil && !p.TemplateType.IsValid() {
		return shared.NewDomainError("INVALID_TEMPLATE_TYPE", "Invalid template type")
	}

	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Category != nil {
		t.Category = strings.TrimSpace(*p.Category)
	}
	if p.TemplateType != nil {
		t.TemplateType = *p.TemplateType
	}
	t.touch()
	return nil
}

// ReplaceContent records that the stored file content changed in place.
// FileRef stays the same so links to the template file remain stable.
func (t *Template) ReplaceContent(fileName string, placeholders PlaceholderSet) {
	if name := strings.TrimSpace(fileName); name != "" {
		t.FileName = name
	}
	t.Placeholders = placeholders
	t.touch()
}

// ValidateTemplateMetadata checks metadata before a file is stored for it
func ValidateTemplateMetadata(name, description, category string, templateType TemplateType) error {
	if err := validateTemplateName(name); err != nil {
		return err
	}
	if len(strings.TrimSpace(description)) > maxTemplateDescLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if len(strings.TrimSpace(category)) > maxTemplateCategoryLength {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 50 characters")
	}
	if templateType != "" && !templateType.IsValid() {
		return shared.NewDomainError("INVALID_TEMPLATE_TYPE", "Invalid template type")
	}
	return nil
}

func (t *Template) touch() {
	t.IncrementVersion()
}

func (t *Template) validateDescription(desc string) error {
	if len(strings.TrimSpace(desc)) > maxTemplateDescLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	return nil
}

func validateTemplateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return shared.NewDomainError("INVALID_NAME", "Template name cannot be empty")
	}
	if len(trimmed) > maxTemplateNameLength {
		return shared.NewDomainError("INVALID_NAME", "Template name cannot exceed 100 characters")
	}
	return nil
}
