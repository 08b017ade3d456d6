package handler

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"

	commapp "github.com/commhub/backend/internal/application/communication"
	"github.com/commhub/backend/internal/domain/shared"
	"github.com/commhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// maxTemplateFileSize matches the largest file the document repository serves back
const maxTemplateFileSize = 20 << 20

// TemplateService is the template use case surface used by TemplateHandler
type TemplateService interface {
	CreateTemplate(ctx context.Context, caller commapp.Caller, req commapp.CreateTemplateRequest, file commapp.UploadedFile) (*commapp.TemplateResponse, error)
	GetTemplate(ctx context.Context, caller commapp.Caller, templateID string) (*commapp.TemplateResponse, error)
	ListTemplates(ctx context.Context, caller commapp.Caller, req commapp.ListTemplatesRequest) ([]commapp.TemplateResponse, int64, error)
	UpdateTemplate(ctx context.Context, caller commapp.Caller, templateID string, req commapp.UpdateTemplateRequest) (*commapp.TemplateResponse, error)
	ReplaceFile(ctx context.Context, caller commapp.Caller, templateID string, file commapp.UploadedFile) (*commapp.TemplateResponse, error)
	DownloadFile(ctx context.Context, caller commapp.Caller, templateID string) (*commapp.TemplateFile, error)
	DeleteTemplate(ctx context.Context, caller commapp.Caller, templateID string) error
	ExtractPlaceholders(ctx context.Context, caller commapp.Caller, templateID string) (*commapp.PlaceholdersResponse, error)
}

// TemplateHandler handles template upload, metadata and file download
type TemplateHandler struct {
	BaseHandler
	templates TemplateService
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(base BaseHandler, templates TemplateService) *TemplateHandler {
	return &TemplateHandler{BaseHandler: base, templates: templates}
}

// Create godoc
//
//	@Summary		Upload a template
//	@Description	Stores a .docx template in the document repository and records its placeholders
//	@Tags			templates
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file			formData	file	true	"Template document (.docx)"
//	@Param			name			formData	string	true	"Template name"
//	@Param			description		formData	string	false	"Description"
//	@Param			category		formData	string	false	"Category"
//	@Param			template_type	formData	string	false	"LETTER, NOTICE, STATEMENT or OTHER"
//	@Success		201				{object}	dto.Response
//	@Failure		400				{object}	dto.Response
//	@Failure		413				{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/communication/templates [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	var req commapp.CreateTemplateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BindError(c, err)
		return
	}
	file, ok := h.readUpload(c)
	if !ok {
		return
	}

	template, err := h.templates.CreateTemplate(c.Request.Context(), callerFrom(c), req, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, template)
}

// Get returns template metadata
func (h *TemplateHandler) Get(c *gin.Context) {
	template, err := h.templates.GetTemplate(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, template)
}

// List returns the caller's templates
func (h *TemplateHandler) List(c *gin.Context) {
	var req commapp.ListTemplatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	items, total, err := h.templates.ListTemplates(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := shared.PageOf(req.Page, req.PageSize)
	h.SuccessWithMeta(c, items, total, page, size)
}

// Update patches template metadata
func (h *TemplateHandler) Update(c *gin.Context) {
	var req commapp.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	template, err := h.templates.UpdateTemplate(c.Request.Context(), callerFrom(c), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, template)
}

// ReplaceFile godoc
//
//	@Summary		Replace a template file
//	@Description	Overwrites the stored document in place; the file reference does not change
//	@Tags			templates
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Template ID"
//	@Param			file	formData	file	true	"Template document (.docx)"
//	@Success		200		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/communication/templates/{id}/file [put]
func (h *TemplateHandler) ReplaceFile(c *gin.Context) {
	file, ok := h.readUpload(c)
	if !ok {
		return
	}

	template, err := h.templates.ReplaceFile(c.Request.Context(), callerFrom(c), c.Param("id"), file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, template)
}

// Download streams the stored template document
func (h *TemplateHandler) Download(c *gin.Context) {
	file, err := h.templates.DownloadFile(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.FileName}))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// Delete removes a template record
func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.templates.DeleteTemplate(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Placeholders re-reads the stored file and lists its placeholders
func (h *TemplateHandler) Placeholders(c *gin.Context) {
	resp, err := h.templates.ExtractPlaceholders(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// readUpload reads the multipart "file" field. It answers the request itself
// and returns false when the upload is missing or too large.
func (h *TemplateHandler) readUpload(c *gin.Context) (commapp.UploadedFile, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.HandleError(c, err)
			return commapp.UploadedFile{}, false
		}
		h.BadRequest(c, "file is required")
		return commapp.UploadedFile{}, false
	}
	if header.Size > maxTemplateFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge, "Template file exceeds the maximum size")
		return commapp.UploadedFile{}, false
	}

	f, err := header.Open()
	if err != nil {
		h.BadRequest(c, "file could not be read")
		return commapp.UploadedFile{}, false
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxTemplateFileSize+1))
	if err != nil {
		h.BadRequest(c, "file could not be read")
		return commapp.UploadedFile{}, false
	}
	return commapp.UploadedFile{Name: header.Filename, Content: content}, true
}
