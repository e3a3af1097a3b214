package handlers

import (
	"github.com/aifahao/streamticket/internal/entitlement"
	apihttp "github.com/aifahao/streamticket/internal/http"
	"github.com/aifahao/streamticket/internal/http/api/view"
	"github.com/aifahao/streamticket/internal/http/response"
	"github.com/gin-gonic/gin"
)

// TicketHandler serves the caller's tickets.
type TicketHandler struct {
	queries *entitlement.Service
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(queries *entitlement.Service) *TicketHandler {
	return &TicketHandler{queries: queries}
}

// List returns the current user's tickets filtered by effective status.
func (h *TicketHandler) List(c *gin.Context) {
	page, errPage := parsePage(c)
	if errPage != nil {
		response.Fail(c, errPage)
		return
	}
	res, errList := h.queries.ListOwnTickets(c.Request.Context(), apihttp.UserID(c), c.Query("status"), page)
	if errList != nil {
		response.Fail(c, errList)
		return
	}
	response.OK(c, gin.H{
		"tickets": view.Tickets(res.Items, h.queries.Now()),
		"total":   res.Total,
		"page":    page.Page,
		"limit":   page.Limit,
	})
}
