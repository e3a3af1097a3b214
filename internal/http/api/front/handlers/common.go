package handlers

import (
	"strconv"
	"strings"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/paging"
	"github.com/gin-gonic/gin"
)

// parseID reads the :id path parameter.
func parseID(c *gin.Context) (uint64, error) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil || id == 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

// parsePage reads page and limit query parameters.
func parsePage(c *gin.Context) (paging.Page, error) {
	return paging.Parse(c.Query("page"), c.Query("limit"))
}
