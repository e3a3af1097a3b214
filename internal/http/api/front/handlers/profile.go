package handlers

import (
	"github.com/aifahao/streamticket/internal/apperr"
	apihttp "github.com/aifahao/streamticket/internal/http"
	"github.com/aifahao/streamticket/internal/http/api/view"
	"github.com/aifahao/streamticket/internal/http/response"
	"github.com/aifahao/streamticket/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProfileHandler handles user profile endpoints.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// Get returns the current user's profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, apihttp.UserID(c)).Error; errFind != nil {
		response.Fail(c, apperr.FromStorage(errFind, "user"))
		return
	}
	response.OK(c, view.User(&user))
}
