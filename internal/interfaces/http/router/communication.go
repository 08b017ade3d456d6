package router

import (
	"net/http"

	"github.com/commhub/backend/internal/interfaces/http/handler"
	"github.com/commhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CommunicationHandlers are the handlers mounted under /communication
type CommunicationHandlers struct {
	Letters   *handler.LetterHandler
	Templates *handler.TemplateHandler
	Fields    *handler.FieldHandler
}

// CommunicationRoutesConfig configures NewCommunicationRoutes
type CommunicationRoutesConfig struct {
	Handlers CommunicationHandlers
	// GenerateLimiter throttles letter generation per tenant. Nil disables it.
	GenerateLimiter *middleware.RateLimiter
	Logger          *zap.Logger
}

// NewCommunicationRoutes builds the /communication route table
func NewCommunicationRoutes(cfg CommunicationRoutesConfig) *RouteTable {
	guard := middleware.NewPermissionGuard(cfg.Logger)
	t := &RouteTable{
		Prefix: "/communication",
		Guard:  func(p string) gin.HandlerFunc { return guard.Require(p) },
	}
	h := cfg.Handlers
	const (
		read   = middleware.PermCommunicationRead
		create = middleware.PermCommunicationCreate
		write  = middleware.PermCommunicationWrite
		del    = middleware.PermCommunicationDelete
	)

	var generate []gin.HandlerFunc
	if cfg.GenerateLimiter != nil {
		generate = append(generate, middleware.TenantRateLimit(cfg.GenerateLimiter))
	}
	t.Add(http.MethodPost, "/letters", create, append(generate, h.Letters.Generate)...)
	t.Add(http.MethodGet, "/letters", read, h.Letters.List)
	t.Add(http.MethodGet, "/letters/:id", read, h.Letters.Get)
	t.Add(http.MethodPost, "/letters/:id/download-url", read, h.Letters.RefreshDownloadURL)

	t.Add(http.MethodPost, "/templates", create, h.Templates.Create)
	t.Add(http.MethodGet, "/templates", read, h.Templates.List)
	t.Add(http.MethodGet, "/templates/:id", read, h.Templates.Get)
	t.Add(http.MethodPut, "/templates/:id", write, h.Templates.Update)
	t.Add(http.MethodPut, "/templates/:id/file", write, h.Templates.ReplaceFile)
	t.Add(http.MethodGet, "/templates/:id/file", read, h.Templates.Download)
	t.Add(http.MethodDelete, "/templates/:id", del, h.Templates.Delete)
	t.Add(http.MethodGet, "/templates/:id/placeholders", read, h.Templates.Placeholders)

	t.Add(http.MethodGet, "/fields", read, h.Fields.List)
	t.Add(http.MethodPut, "/fields/:key", write, h.Fields.Register)
	t.Add(http.MethodDelete, "/fields/:key", del, h.Fields.Delete)

	return t
}
