package handler

import (
	"errors"
	"fmt"
	"net/http"

	commapp "github.com/commhub/backend/internal/application/communication"
	"github.com/commhub/backend/internal/domain/shared"
	"github.com/commhub/backend/internal/infrastructure/logger"
	"github.com/commhub/backend/internal/interfaces/http/dto"
	"github.com/commhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const genericFailureMessage = "The request could not be completed"

// BaseHandler provides common handler utilities
type BaseHandler struct {
	logger *zap.Logger
	// exposeInternal puts the real error text into 5xx responses. Never set
	// in production.
	exposeInternal bool
}

// NewBaseHandler creates a BaseHandler
func NewBaseHandler(log *zap.Logger, exposeInternal bool) BaseHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return BaseHandler{logger: log, exposeInternal: exposeInternal}
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// callerFrom builds the caller identity set by the JWT middleware
func callerFrom(c *gin.Context) commapp.Caller {
	return commapp.Caller{
		TenantID: middleware.GetJWTTenantID(c),
		UserID:   middleware.GetJWTUserID(c),
	}
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.OK(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.Page(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.OK(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.Fail(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// BindError answers a failed ShouldBind call, listing invalid fields when
// the failure came from validation.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size")
		return
	}
	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.Invalid(getRequestID(c), details))
		return
	}
	h.BadRequest(c, "Malformed request")
}

// HandleError maps an error to a response. Domain errors keep their code;
// tenant mismatches look like missing resources; server side failures are
// logged and reported without detail unless exposeInternal is set.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size")
		return
	}

	code := dto.ErrCodeInternal
	message := genericFailureMessage
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = dto.PublicErrorCode(domainErr.Code)
		message = domainErr.Message
		if domainErr.Code == dto.ErrCodeTenantMismatch {
			message = "Resource not found"
		}
	}

	status := dto.GetHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		detail := err.Error()
		fields := []zap.Field{
			zap.String("code", code),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		}
		if domainErr != nil && domainErr.Cause != nil {
			detail = fmt.Sprintf("%s: %v", detail, domainErr.Cause)
			fields = append(fields, zap.NamedError("cause", domainErr.Cause))
		}
		logger.L(c.Request.Context(), h.log()).Error("Request failed", fields...)

		message = genericFailureMessage
		if h.exposeInternal {
			message = detail
		}
	}

	_ = c.Error(err)
	h.Error(c, status, code, message)
}

func (h *BaseHandler) log() *zap.Logger {
	if h.logger == nil {
		return zap.NewNop()
	}
	return h.logger
}
