package middleware

import (
	"net/http"

	"github.com/commhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Permissions guarding the communication routes
const (
	PermCommunicationRead   = "communication:read"
	PermCommunicationCreate = "communication:create"
	PermCommunicationWrite  = "communication:write"
	PermCommunicationDelete = "communication:delete"
)

// PermissionGuard builds per-route permission checks sharing one logger
type PermissionGuard struct {
	logger *zap.Logger
}

// NewPermissionGuard creates a guard. A nil logger disables denial logging.
func NewPermissionGuard(logger *zap.Logger) *PermissionGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionGuard{logger: logger}
}

// Require admits callers holding at least one of permissions. It must run
// after JWT authentication; a request without claims is treated as
// unauthenticated rather than forbidden.
func (g *PermissionGuard) Require(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			g.logger.Warn("Permission check without authentication",
				zap.Strings("required_any", permissions),
				zap.String("path", c.FullPath()),
			)
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !claims.HasAnyPermission(permissions...) {
			g.logger.Warn("Permission denied",
				zap.String("tenant_id", claims.TenantID),
				zap.String("user_id", claims.UserID),
				zap.Strings("required_any", permissions),
				zap.Strings("granted", claims.Permissions),
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
			)
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Access denied: insufficient permissions")
			return
		}
		c.Next()
	}
}

// RequirePermission is Require on a guard without logging
func RequirePermission(permission string) gin.HandlerFunc {
	return NewPermissionGuard(nil).Require(permission)
}
