package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/commhub/backend/internal/infrastructure/auth"
	"github.com/commhub/backend/internal/infrastructure/logger"
	"github.com/commhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the JWT middleware
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTTenantIDKey = "jwt_tenant_id"
)

const bearerScheme = "bearer"

// TokenValidator validates a bearer token and returns its claims
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Validator TokenValidator
	Logger    *zap.Logger
}

// JWTAuthMiddleware authenticates with validator and no logging
func JWTAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{Validator: validator})
}

// JWTAuthMiddlewareWithConfig requires a valid bearer token identifying both a
// tenant and a user. The identity is stored on the gin context and on the
// request context for service-level logging.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token, reason := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			rejectUnauthenticated(c, log, auth.ErrInvalidToken, reason)
			return
		}

		claims, err := cfg.Validator.ValidateAccessToken(token)
		if err != nil {
			rejectUnauthenticated(c, log, err, "token validation failed")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTTenantIDKey, claims.TenantID)
		c.Request = c.Request.WithContext(logger.WithIdentity(c.Request.Context(), claims.TenantID, claims.UserID))

		log.Debug("Caller authenticated",
			zap.String("user_id", claims.UserID),
			zap.String("tenant_id", claims.TenantID),
		)
		c.Next()
	}
}

// bearerToken extracts the credentials of an Authorization header. The scheme
// is matched case-insensitively.
func bearerToken(header string) (token, reason string) {
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, rest, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", "authorization scheme is not bearer"
	}
	token = strings.TrimSpace(rest)
	if token == "" {
		return "", "missing token"
	}
	return token, ""
}

var authFailures = []struct {
	err     error
	code    string
	message string
}{
	{auth.ErrExpiredToken, dto.ErrCodeTokenExpired, "Token has expired"},
	{auth.ErrTokenNotYetValid, "TOKEN_NOT_VALID", "Token is not yet valid"},
	{auth.ErrMissingTenantID, dto.ErrCodeUnauthorized, "Token does not identify a tenant and user"},
	{auth.ErrMissingUserID, dto.ErrCodeUnauthorized, "Token does not identify a tenant and user"},
	{auth.ErrInvalidClaims, dto.ErrCodeTokenInvalid, "Invalid token"},
	{auth.ErrInvalidToken, dto.ErrCodeTokenInvalid, "Invalid token"},
}

func rejectUnauthenticated(c *gin.Context, log *zap.Logger, err error, reason string) {
	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	for _, f := range authFailures {
		if errors.Is(err, f.err) {
			code, message = f.code, f.message
			break
		}
	}

	log.Warn("Authentication failed",
		zap.Error(err),
		zap.String("reason", reason),
		zap.String("code", code),
		zap.String("path", c.Request.URL.Path),
	)
	abortWithError(c, http.StatusUnauthorized, code, message)
}

// GetJWTClaims returns the authenticated claims, or nil
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetJWTUserID returns the authenticated user ID
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTTenantID returns the authenticated tenant ID
func GetJWTTenantID(c *gin.Context) string {
	return c.GetString(JWTTenantIDKey)
}
