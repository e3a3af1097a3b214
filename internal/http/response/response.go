// Package response writes the {success, data, error} envelope used by every API route.
package response

import (
	"errors"
	"net/http"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/logging"
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// OK writes a 200 success envelope.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Fail maps err to its status and writes a failure envelope.
// Internal details are logged and never sent to the client.
func Fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	entry := logging.FromContext(c).WithError(err).WithField("kind", kind.String())
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	var appErr *apperr.Error
	retryable := errors.As(err, &appErr) && appErr.Retryable()
	if !retryable && kind == apperr.KindUnavailable {
		retryable = true
	}
	c.JSON(status, Envelope{Success: false, Error: apperr.PublicMessage(err), Retryable: retryable})
}

// Abort writes a failure envelope and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Fail(c, err)
	c.Abort()
}
