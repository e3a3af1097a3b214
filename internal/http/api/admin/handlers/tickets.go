package handlers

import (
	"github.com/aifahao/streamticket/internal/backoffice"
	"github.com/aifahao/streamticket/internal/entitlement"
	"github.com/aifahao/streamticket/internal/http/api/view"
	"github.com/aifahao/streamticket/internal/http/response"
	"github.com/aifahao/streamticket/internal/logging"
	"github.com/gin-gonic/gin"
)

// TicketHandler manages tickets.
type TicketHandler struct {
	queries *entitlement.Service
	gateway *backoffice.Gateway
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(queries *entitlement.Service, gateway *backoffice.Gateway) *TicketHandler {
	return &TicketHandler{queries: queries, gateway: gateway}
}

// List returns tickets matching the optional search term and status.
func (h *TicketHandler) List(c *gin.Context) {
	page, errPage := parsePage(c)
	if errPage != nil {
		response.Fail(c, errPage)
		return
	}
	res, errList := h.queries.ListTickets(c.Request.Context(), c.Query("search"), c.Query("status"), page)
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

// Get returns one ticket.
func (h *TicketHandler) Get(c *gin.Context) {
	id, errID := parseID(c)
	if errID != nil {
		response.Fail(c, errID)
		return
	}
	ticket, errGet := h.queries.GetTicket(c.Request.Context(), id)
	if errGet != nil {
		response.Fail(c, errGet)
		return
	}
	response.OK(c, view.Ticket(ticket, h.queries.Now()))
}

// Update applies a partial update to a ticket.
func (h *TicketHandler) Update(c *gin.Context) {
	id, errID := parseID(c)
	if errID != nil {
		response.Fail(c, errID)
		return
	}
	var patch backoffice.TicketPatch
	if errBind := bindPatch(c, &patch); errBind != nil {
		response.Fail(c, errBind)
		return
	}
	ticket, errUpdate := h.gateway.UpdateTicket(c.Request.Context(), id, patch)
	if errUpdate != nil {
		response.Fail(c, errUpdate)
		return
	}
	logging.FromContext(c).WithField("ticket_id", id).Info("admin updated ticket")
	response.OK(c, view.Ticket(ticket, h.queries.Now()))
}
