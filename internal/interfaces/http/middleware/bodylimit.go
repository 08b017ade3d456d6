package middleware

import (
	"mime"
	"net/http"

	"github.com/commhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimits caps request bodies by kind. Zero disables a cap.
type BodyLimits struct {
	Default   int64
	Multipart int64 // template uploads
}

func (l BodyLimits) forRequest(r *http.Request) int64 {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return l.Multipart
	}
	return l.Default
}

// BodyLimit answers 413 when the declared length is over the limit and wraps
// the body otherwise, so a chunked body that runs over surfaces to the
// handler as *http.MaxBytesError.
func BodyLimit(limits BodyLimits) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := limits.forRequest(c.Request)
		switch {
		case limit <= 0 || c.Request.Body == nil:
		case c.Request.ContentLength > limit:
			abortWithError(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Request body exceeds maximum allowed size")
			return
		default:
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
