package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/http/response"
	"github.com/gin-gonic/gin"
)

// Timeout bounds the context of every request. Store calls that outlive it fail
// with a deadline error that handlers report as 503 retryable.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// NotFound answers unmatched routes with the envelope.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Fail(c, apperr.NotFound("route %s %s not found", c.Request.Method, c.Request.URL.Path))
	}
}

// MethodNotAllowed answers known paths hit with the wrong method.
func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, response.Envelope{
			Success: false,
			Error:   "method " + strings.ToUpper(c.Request.Method) + " not allowed",
		})
	}
}

// Recovery converts panics into a 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		response.Abort(c, apperr.Internal(nil, "panic: %v", recovered))
	})
}
