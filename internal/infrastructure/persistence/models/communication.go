package models

import (
	"time"

	"github.com/commhub/backend/internal/domain/communication"
	"gorm.io/datatypes"
)

// TemplateModel is the GORM model for communication_templates
type TemplateModel struct {
	TenantAggregateModel
	Name         string                      `gorm:"type:varchar(100);not null"`
	Description  string                      `gorm:"type:text"`
	Category     string                      `gorm:"type:varchar(50);index"`
	TemplateType string                      `gorm:"column:template_type;type:varchar(20);not null;default:'LETTER'"`
	FileRef      string                      `gorm:"column:file_ref;type:varchar(128);not null"`
	FileName     string                      `gorm:"column:file_name;type:varchar(255)"`
	Placeholders datatypes.JSONSlice[string] `gorm:"not null"`
}

// TableName returns the table name for TemplateModel
func (TemplateModel) TableName() string {
	return "communication_templates"
}

// ToDomain converts TemplateModel to a domain Template
func (m *TemplateModel) ToDomain() *communication.Template {
	return &communication.Template{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		Description:         m.Description,
		Category:            m.Category,
		TemplateType:        communication.TemplateType(m.TemplateType),
		FileRef:             m.FileRef,
		FileName:            m.FileName,
		Placeholders:        communication.NewPlaceholderSet(m.Placeholders...),
	}
}

// TemplateModelFromDomain creates a TemplateModel from a domain Template
func TemplateModelFromDomain(t *communication.Template) *TemplateModel {
	m := &TemplateModel{
		Name:         t.Name,
		Description:  t.Description,
		Category:     t.Category,
		TemplateType: string(t.TemplateType),
		FileRef:      t.FileRef,
		FileName:     t.FileName,
		Placeholders: datatypes.JSONSlice[string](t.Placeholders.Names()),
	}
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	return m
}

// FieldModel is the GORM model for communication_fields. The catalog is global.
type FieldModel struct {
	Key        string    `gorm:"type:varchar(64);primaryKey"`
	Label      string    `gorm:"type:varchar(200);not null"`
	SourcePath string    `gorm:"column:source_path;type:varchar(255);not null"`
	DataType   string    `gorm:"column:data_type;type:varchar(10);not null;default:'string'"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for FieldModel
func (FieldModel) TableName() string {
	return "communication_fields"
}

// ToDomain converts FieldModel to a domain FieldEntry
func (m *FieldModel) ToDomain() communication.FieldEntry {
	return communication.FieldEntry{
		Key:        m.Key,
		Label:      m.Label,
		SourcePath: m.SourcePath,
		DataType:   communication.FieldDataType(m.DataType),
	}
}

// FieldModelFromDomain creates a FieldModel from a domain FieldEntry
func FieldModelFromDomain(f *communication.FieldEntry) *FieldModel {
	return &FieldModel{
		Key:        f.Key,
		Label:      f.Label,
		SourcePath: f.SourcePath,
		DataType:   string(f.DataType),
	}
}

// LetterModel is the GORM model for communication_letters. Rows are never updated.
type LetterModel struct {
	ID           string    `gorm:"type:varchar(24);primaryKey"`
	TenantID     string    `gorm:"type:varchar(64);not null;index:idx_letters_tenant_member"`
	MemberID     string    `gorm:"column:member_id;type:varchar(24);not null;index:idx_letters_tenant_member"`
	TemplateID   string    `gorm:"column:template_id;type:varchar(24);not null;index"`
	FileName     string    `gorm:"column:file_name;type:varchar(255);not null"`
	ArtifactPath string    `gorm:"column:artifact_path;type:varchar(512);not null;uniqueIndex"`
	ContentType  string    `gorm:"column:content_type;type:varchar(128);not null"`
	CreatedBy    string    `gorm:"type:varchar(64)"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for LetterModel
func (LetterModel) TableName() string {
	return "communication_letters"
}

// ToDomain converts LetterModel to a domain Letter
func (m *LetterModel) ToDomain() *communication.Letter {
	return &communication.Letter{
		ID:           m.ID,
		TenantID:     m.TenantID,
		MemberID:     m.MemberID,
		TemplateID:   m.TemplateID,
		FileName:     m.FileName,
		ArtifactPath: m.ArtifactPath,
		ContentType:  m.ContentType,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
	}
}

// LetterModelFromDomain creates a LetterModel from a domain Letter
func LetterModelFromDomain(l *communication.Letter) *LetterModel {
	return &LetterModel{
		ID:           l.ID,
		TenantID:     l.TenantID,
		MemberID:     l.MemberID,
		TemplateID:   l.TemplateID,
		FileName:     l.FileName,
		ArtifactPath: l.ArtifactPath,
		ContentType:  l.ContentType,
		CreatedBy:    l.CreatedBy,
		CreatedAt:    l.CreatedAt,
	}
}

// All returns every model of the service, for test schemas
func All() []any {
	return []any{&TemplateModel{}, &FieldModel{}, &LetterModel{}}
}
