package handlers

import (
	"strconv"
	"strings"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/paging"
	"github.com/gin-gonic/gin"
)

func parseID(c *gin.Context) (uint64, error) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil || id == 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

func parsePage(c *gin.Context) (paging.Page, error) {
	return paging.Parse(c.Query("page"), c.Query("limit"))
}

// bindPatch decodes a JSON body, mapping decode failures to 400.
func bindPatch(c *gin.Context, dest any) error {
	if errBind := c.ShouldBindJSON(dest); errBind != nil {
		return apperr.Validation("invalid json")
	}
	return nil
}
