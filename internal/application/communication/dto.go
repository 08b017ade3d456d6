package communication

import (
	"time"

	"github.com/commhub/backend/internal/domain/communication"
)

// =============================================================================
// Letter DTOs
// =============================================================================

// GenerateLetterRequest asks for one letter for one member
type GenerateLetterRequest struct {
	MemberID   string `json:"member_id" binding:"required"`
	TemplateID string `json:"template_id" binding:"required"`
}

// GenerateLetterResponse is returned once a letter is published and recorded
type GenerateLetterResponse struct {
	LetterID    string    `json:"letter_id"`
	DownloadURL string    `json:"download_url"`
	FileName    string    `json:"file_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ListLettersRequest filters the ledger
type ListLettersRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	MemberID   string `form:"member_id"`
	TemplateID string `form:"template_id"`
}

// LetterResponse is a ledger entry. It never carries a signed URL.
type LetterResponse struct {
	ID           string    `json:"id"`
	MemberID     string    `json:"member_id"`
	TemplateID   string    `json:"template_id"`
	FileName     string    `json:"file_name"`
	ArtifactPath string    `json:"artifact_path"`
	ContentType  string    `json:"content_type"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// DownloadURLResponse carries a freshly signed link
type DownloadURLResponse struct {
	LetterID    string    `json:"letter_id"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// =============================================================================
// Template DTOs
// =============================================================================

// CreateTemplateRequest holds the metadata sent with a template upload
type CreateTemplateRequest struct {
	Name         string `form:"name" binding:"required,max=100"`
	Description  string `form:"description" binding:"max=500"`
	Category     string `form:"category" binding:"max=50"`
	TemplateType string `form:"template_type"`
}

// UpdateTemplateRequest patches template metadata
type UpdateTemplateRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description  *string `json:"description" binding:"omitempty,max=500"`
	Category     *string `json:"category" binding:"omitempty,max=50"`
	TemplateType *string `json:"template_type"`
}

// ListTemplatesRequest filters templates
type ListTemplatesRequest struct {
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search       string `form:"search"`
	Category     string `form:"category"`
	TemplateType string `form:"template_type"`
}

// UploadedFile is a template file received from a caller
type UploadedFile struct {
	Name    string
	Content []byte
}

// TemplateResponse represents a template
type TemplateResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	Category            string    `json:"category"`
	TemplateType        string    `json:"template_type"`
	FileRef             string    `json:"file_ref"`
	FileName            string    `json:"file_name"`
	Placeholders        []string  `json:"placeholders"`
	UnknownPlaceholders []string  `json:"unknown_placeholders,omitempty"`
	CreatedBy           string    `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Version             int       `json:"version"`
}

// PlaceholdersResponse lists the tokens found in a stored template file
type PlaceholdersResponse struct {
	TemplateID          string   `json:"template_id"`
	Placeholders        []string `json:"placeholders"`
	UnknownPlaceholders []string `json:"unknown_placeholders"`
}

// TemplateFile is a downloaded template document
type TemplateFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

// =============================================================================
// Field catalog DTOs
// =============================================================================

// RegisterFieldRequest creates or replaces a catalog entry
type RegisterFieldRequest struct {
	Label      string `json:"label" binding:"max=100"`
	SourcePath string `json:"source_path" binding:"required,max=200"`
	DataType   string `json:"data_type" binding:"omitempty,oneof=string date number"`
}

// FieldResponse represents a catalog entry
type FieldResponse struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	SourcePath string `json:"source_path"`
	DataType   string `json:"data_type"`
}

func toLetterResponse(l *communication.Letter) LetterResponse {
	return LetterResponse{
		ID:           l.ID,
		MemberID:     l.MemberID,
		TemplateID:   l.TemplateID,
		FileName:     l.FileName,
		ArtifactPath: l.ArtifactPath,
		ContentType:  l.ContentType,
		CreatedBy:    l.CreatedBy,
		CreatedAt:    l.CreatedAt,
	}
}

func toTemplateResponse(t *communication.Template) *TemplateResponse {
	return &TemplateResponse{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		Category:     t.Category,
		TemplateType: t.TemplateType.String(),
		FileRef:      t.FileRef,
		FileName:     t.FileName,
		Placeholders: t.Placeholders.Names(),
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		Version:      t.Version,
	}
}

func toFieldResponse(f communication.FieldEntry) FieldResponse {
	return FieldResponse{
		Key:        f.Key,
		Label:      f.Label,
		SourcePath: f.SourcePath,
		DataType:   string(f.DataType),
	}
}
