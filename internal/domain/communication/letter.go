package communication

import (
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

// DocxContentType is the content type of rendered letters
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Letter is a generation ledger entry. It is written once after a letter has
// been published and never modified.
type Letter struct {
	ID           string
	TenantID     string
	MemberID     string
	TemplateID   string
	FileName     string
	ArtifactPath string
	ContentType  string
	CreatedBy    string
	CreatedAt    time.Time
}

// Artifact identifies a published document in object storage
type Artifact struct {
	Path        string
	FileName    string
	ContentType string
	SignedURL   string
	ExpiresAt   time.Time
}

// NewArtifactPath builds tenantId/memberId/letter-<uuid>.docx. The random
// component makes every generation land on a fresh path.
func NewArtifactPath(tenantID, memberID string) (storagePath, fileName string, err error) {
	if err := ValidateTenantID(tenantID); err != nil {
		return "", "", err
	}
	if err := ValidateRecordID(memberID); err != nil {
		return "", "", err
	}
	fileName = fmt.Sprintf("letter-%s.docx", uuid.NewString())
	return path.Join(tenantID, memberID, fileName), fileName, nil
}

// NewLetter builds a ledger entry for a published artifact
func NewLetter(tenantID, createdBy, memberID, templateID string, artifact Artifact, id string, now time.Time) *Letter {
	contentType := artifact.ContentType
	if contentType == "" {
		contentType = DocxContentType
	}
	return &Letter{
		ID:           id,
		TenantID:     tenantID,
		MemberID:     memberID,
		TemplateID:   templateID,
		FileName:     artifact.FileName,
		ArtifactPath: artifact.Path,
		ContentType:  contentType,
		CreatedBy:    createdBy,
		CreatedAt:    now.UTC(),
	}
}
