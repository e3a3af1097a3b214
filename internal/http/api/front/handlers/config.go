package handlers

import (
	"github.com/aifahao/streamticket/internal/http/response"
	"github.com/aifahao/streamticket/internal/settings"
	"github.com/gin-gonic/gin"
)

// GetPublicConfig returns the settings the storefront UI needs before login.
func GetPublicConfig(c *gin.Context) {
	response.OK(c, gin.H{"site_name": settings.SiteName()})
}
