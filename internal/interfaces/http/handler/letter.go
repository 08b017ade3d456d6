package handler

import (
	"context"

	commapp "github.com/commhub/backend/internal/application/communication"
	"github.com/commhub/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// LetterService is the letter use case surface used by LetterHandler
type LetterService interface {
	GenerateLetter(ctx context.Context, caller commapp.Caller, req commapp.GenerateLetterRequest) (*commapp.GenerateLetterResponse, error)
	GetLetter(ctx context.Context, caller commapp.Caller, letterID string) (*commapp.LetterResponse, error)
	ListLetters(ctx context.Context, caller commapp.Caller, req commapp.ListLettersRequest) ([]commapp.LetterResponse, int64, error)
	RefreshDownloadURL(ctx context.Context, caller commapp.Caller, letterID string) (*commapp.DownloadURLResponse, error)
}

// LetterHandler handles letter generation and the letter ledger
type LetterHandler struct {
	BaseHandler
	letters LetterService
}

// NewLetterHandler creates a new LetterHandler
func NewLetterHandler(base BaseHandler, letters LetterService) *LetterHandler {
	return &LetterHandler{BaseHandler: base, letters: letters}
}

// Generate godoc
//
//	@Summary		Generate a letter
//	@Description	Merges a member's data into a template and returns a signed download link
//	@Tags			letters
//	@Accept			json
//	@Produce		json
//	@Param			request	body		communication.GenerateLetterRequest	true	"Member and template"
//	@Success		201		{object}	dto.Response
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		502		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/communication/letters [post]
func (h *LetterHandler) Generate(c *gin.Context) {
	var req commapp.GenerateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.letters.GenerateLetter(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns one ledger entry
func (h *LetterHandler) Get(c *gin.Context) {
	letter, err := h.letters.GetLetter(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, letter)
}

// List returns the caller's letters, newest first
func (h *LetterHandler) List(c *gin.Context) {
	var req commapp.ListLettersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	items, total, err := h.letters.ListLetters(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := shared.PageOf(req.Page, req.PageSize)
	h.SuccessWithMeta(c, items, total, page, size)
}

// RefreshDownloadURL signs a new link for a recorded letter
func (h *LetterHandler) RefreshDownloadURL(c *gin.Context) {
	resp, err := h.letters.RefreshDownloadURL(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
