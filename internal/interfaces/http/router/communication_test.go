package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	commapp "github.com/commhub/backend/internal/application/communication"
	"github.com/commhub/backend/internal/infrastructure/auth"
	"github.com/commhub/backend/internal/interfaces/http/handler"
	"github.com/commhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Stubs embed the service interfaces; only the methods a test reaches are
// implemented.
type stubLetters struct {
	handler.LetterService
}

func (stubLetters) GenerateLetter(context.Context, commapp.Caller, commapp.GenerateLetterRequest) (*commapp.GenerateLetterResponse, error) {
	return &commapp.GenerateLetterResponse{LetterID: "l-1"}, nil
}

func (stubLetters) GetLetter(_ context.Context, _ commapp.Caller, id string) (*commapp.LetterResponse, error) {
	return &commapp.LetterResponse{ID: id}, nil
}

type stubTemplates struct {
	handler.TemplateService
}

func (stubTemplates) DeleteTemplate(context.Context, commapp.Caller, string) error {
	return nil
}

type stubFields struct {
	handler.FieldCatalogService
}

func (stubFields) ListKeys(context.Context) ([]commapp.FieldResponse, error) {
	return []commapp.FieldResponse{}, nil
}

// withClaims stands in for the JWT middleware
func withClaims(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := &auth.Claims{TenantID: "t1", UserID: "u1", Permissions: permissions}
		c.Set(middleware.JWTClaimsKey, claims)
		c.Set(middleware.JWTTenantIDKey, claims.TenantID)
		c.Set(middleware.JWTUserIDKey, claims.UserID)
		c.Next()
	}
}

func newCommunicationEngine(limiter *middleware.RateLimiter, permissions ...string) *gin.Engine {
	base := handler.NewBaseHandler(nil, false)
	group := NewCommunicationRoutes(CommunicationRoutesConfig{
		Handlers: CommunicationHandlers{
			Letters:   handler.NewLetterHandler(base, stubLetters{}),
			Templates: handler.NewTemplateHandler(base, stubTemplates{}),
			Fields:    handler.NewFieldHandler(base, stubFields{}),
		},
		GenerateLimiter: limiter,
	})

	engine := gin.New()
	NewRouter(engine, WithAPIMiddleware(withClaims(permissions...))).Register(group).Setup()
	return engine
}

func postJSON(engine http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestCommunicationRoutes_Table(t *testing.T) {
	table := NewCommunicationRoutes(CommunicationRoutesConfig{Handlers: CommunicationHandlers{}})

	const (
		read   = middleware.PermCommunicationRead
		create = middleware.PermCommunicationCreate
		write  = middleware.PermCommunicationWrite
		del    = middleware.PermCommunicationDelete
	)
	assert.Equal(t, map[string]string{
		"POST /communication/letters":                   create,
		"GET /communication/letters":                    read,
		"GET /communication/letters/:id":                read,
		"POST /communication/letters/:id/download-url":  read,
		"POST /communication/templates":                 create,
		"GET /communication/templates":                  read,
		"GET /communication/templates/:id":              read,
		"PUT /communication/templates/:id":              write,
		"PUT /communication/templates/:id/file":         write,
		"GET /communication/templates/:id/file":         read,
		"DELETE /communication/templates/:id":           del,
		"GET /communication/templates/:id/placeholders": read,
		"GET /communication/fields":                     read,
		"PUT /communication/fields/:key":                write,
		"DELETE /communication/fields/:key":             del,
	}, table.Permissions())
}

func TestCommunicationRoutes_Permissions(t *testing.T) {
	tests := []struct {
		name        string
		permissions []string
		method      string
		path        string
		status      int
	}{
		{"read can get letter", []string{middleware.PermCommunicationRead}, http.MethodGet, "/api/v1/communication/letters/l-9", http.StatusOK},
		{"read cannot generate", []string{middleware.PermCommunicationRead}, http.MethodPost, "/api/v1/communication/letters", http.StatusForbidden},
		{"create can generate", []string{middleware.PermCommunicationCreate}, http.MethodPost, "/api/v1/communication/letters", http.StatusCreated},
		{"write cannot delete template", []string{middleware.PermCommunicationWrite}, http.MethodDelete, "/api/v1/communication/templates/tpl-1", http.StatusForbidden},
		{"delete can delete template", []string{middleware.PermCommunicationDelete}, http.MethodDelete, "/api/v1/communication/templates/tpl-1", http.StatusNoContent},
		{"create cannot list fields", []string{middleware.PermCommunicationCreate}, http.MethodGet, "/api/v1/communication/fields", http.StatusForbidden},
		{"wildcard lists fields", []string{"*"}, http.MethodGet, "/api/v1/communication/fields", http.StatusOK},
		{"no permissions", nil, http.MethodGet, "/api/v1/communication/letters/l-1", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newCommunicationEngine(nil, tt.permissions...)

			var w *httptest.ResponseRecorder
			if tt.method == http.MethodPost {
				w = postJSON(engine, tt.path, `{"member_id":"M-1","template_id":"tpl-1"}`)
			} else {
				w = serve(engine, tt.method, tt.path)
			}
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestCommunicationRoutes_GenerateIsRateLimitedPerTenant(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	engine := newCommunicationEngine(limiter, middleware.PermCommunicationCreate, middleware.PermCommunicationRead)
	body := `{"member_id":"M-1","template_id":"tpl-1"}`

	assert.Equal(t, http.StatusCreated, postJSON(engine, "/api/v1/communication/letters", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, postJSON(engine, "/api/v1/communication/letters", body).Code)

	// Reads are not throttled
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/communication/letters/l-1").Code)
}
