package communication

import (
	"strings"
	"testing"

	"github.com/commhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplate(t *testing.T) {
	tests := []struct {
		name         string
		tenantID     string
		templateName string
		templateType TemplateType
		fileRef      string
		expectError  bool
		errorMsg     string
	}{
		{"valid letter", "t1", "Welcome", TemplateTypeLetter, "01ABCDEF", false, ""},
		{"type defaults to letter", "t1", "Welcome", "", "01ABCDEF", false, ""},
		{"empty tenant", "", "Welcome", TemplateTypeLetter, "01ABCDEF", true, "Tenant ID"},
		{"empty name", "t1", "  ", TemplateTypeLetter, "01ABCDEF", true, "cannot be empty"},
		{"name too long", "t1", strings.Repeat("a", 101), TemplateTypeLetter, "01ABCDEF", true, "100 characters"},
		{"bad type", "t1", "Welcome", TemplateType("MEMO"), "01ABCDEF", true, "Invalid template type"},
		{"missing file ref", "t1", "Welcome", TemplateTypeLetter, "", true, "file reference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := NewTemplate(tt.tenantID, "u1", tt.templateName, tt.templateType, tt.fileRef, "welcome.docx", NewPlaceholderSet("Name"))
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			require.NoError(t, err)
			assert.Len(t, tmpl.ID, 24)
			assert.Equal(t, "t1", tmpl.TenantID)
			assert.Equal(t, "u1", tmpl.CreatedBy)
			assert.Equal(t, TemplateTypeLetter, tmpl.TemplateType)
			assert.Equal(t, 1, tmpl.Version)
			assert.Equal(t, []string{"Name"}, tmpl.Placeholders.Names())
		})
	}
}

func TestTemplate_ApplyPatch(t *testing.T) {
	tmpl, err := NewTemplate("t1", "u1", "Welcome", TemplateTypeLetter, "ref", "w.docx", PlaceholderSet{})
	require.NoError(t, err)

	name := "Renewal reminder"
	category := "renewals"
	notice := TemplateTypeNotice
	require.NoError(t, tmpl.ApplyPatch(TemplatePatch{Name: &name, Category: &category, TemplateType: &notice}))

	assert.Equal(t, "Renewal reminder", tmpl.Name)
	assert.Equal(t, "renewals", tmpl.Category)
	assert.Equal(t, TemplateTypeNotice, tmpl.TemplateType)
	assert.Equal(t, "", tmpl.Description)
	assert.Equal(t, 2, tmpl.Version)

	empty := ""
	err = tmpl.ApplyPatch(TemplatePatch{Name: &empty, Category: &category})
	require.Error(t, err)
	assert.Equal(t, "Renewal reminder", tmpl.Name, "failed patch must not partially apply")
}

func TestTemplate_ReplaceContentKeepsFileRef(t *testing.T) {
	tmpl, err := NewTemplate("t1", "u1", "Welcome", TemplateTypeLetter, "ref-1", "w.docx", NewPlaceholderSet("A"))
	require.NoError(t, err)

	tmpl.ReplaceContent("w2.docx", NewPlaceholderSet("B", "C"))

	assert.Equal(t, "ref-1", tmpl.FileRef)
	assert.Equal(t, "w2.docx", tmpl.FileName)
	assert.Equal(t, []string{"B", "C"}, tmpl.Placeholders.Names())
}

func TestTemplate_BelongsTo(t *testing.T) {
	tmpl, err := NewTemplate("tenant-a", "u1", "Welcome", TemplateTypeLetter, "ref", "", PlaceholderSet{})
	require.NoError(t, err)
	assert.True(t, tmpl.BelongsTo("tenant-a"))
	assert.False(t, tmpl.BelongsTo("tenant-b"))
	assert.False(t, tmpl.BelongsTo(""))
}

func TestValidateTemplateMetadata(t *testing.T) {
	assert.NoError(t, ValidateTemplateMetadata("Renewal", "", "", ""))
	assert.NoError(t, ValidateTemplateMetadata("Renewal", "desc", "billing", TemplateTypeNotice))

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"blank name", ValidateTemplateMetadata("  ", "", "", TemplateTypeLetter), "INVALID_NAME"},
		{"long description", ValidateTemplateMetadata("x", strings.Repeat("d", 501), "", ""), "INVALID_DESCRIPTION"},
		{"long category", ValidateTemplateMetadata("x", "", strings.Repeat("c", 51), ""), "INVALID_CATEGORY"},
		{"bad type", ValidateTemplateMetadata("x", "", "", "MEMO"), "INVALID_TEMPLATE_TYPE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de, ok := shared.AsDomainError(tt.err)
			require.True(t, ok)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}
