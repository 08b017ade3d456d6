package handler

import (
	"context"

	commapp "github.com/commhub/backend/internal/application/communication"
	"github.com/gin-gonic/gin"
)

// FieldCatalogService is the field catalog surface used by FieldHandler
type FieldCatalogService interface {
	ListKeys(ctx context.Context) ([]commapp.FieldResponse, error)
	RegisterField(ctx context.Context, key string, req commapp.RegisterFieldRequest) (*commapp.FieldResponse, error)
	DeleteField(ctx context.Context, key string) error
}

// FieldHandler manages the placeholder field catalog. The catalog is shared
// by all tenants; routes are guarded by permissions only.
type FieldHandler struct {
	BaseHandler
	fields FieldCatalogService
}

// NewFieldHandler creates a new FieldHandler
func NewFieldHandler(base BaseHandler, fields FieldCatalogService) *FieldHandler {
	return &FieldHandler{BaseHandler: base, fields: fields}
}

// List returns every catalog entry
func (h *FieldHandler) List(c *gin.Context) {
	fields, err := h.fields.ListKeys(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fields)
}

// Register creates or replaces the entry for :key
func (h *FieldHandler) Register(c *gin.Context) {
	var req commapp.RegisterFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	field, err := h.fields.RegisterField(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, field)
}

// Delete removes the entry for :key
func (h *FieldHandler) Delete(c *gin.Context) {
	if err := h.fields.DeleteField(c.Request.Context(), c.Param("key")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
