package handlers

import (
	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/db"
	"github.com/aifahao/streamticket/internal/http/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health checks database connectivity.
func (h *HealthHandler) Health(c *gin.Context) {
	if errPing := db.Ping(c.Request.Context(), h.db); errPing != nil {
		response.Fail(c, &apperr.Error{Kind: apperr.KindUnavailable, Message: "database unavailable", Err: errPing})
		return
	}
	response.OK(c, gin.H{"status": "ok"})
}
