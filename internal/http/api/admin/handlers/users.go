package handlers

import (
	"github.com/aifahao/streamticket/internal/backoffice"
	"github.com/aifahao/streamticket/internal/entitlement"
	"github.com/aifahao/streamticket/internal/http/api/view"
	"github.com/aifahao/streamticket/internal/http/response"
	"github.com/aifahao/streamticket/internal/logging"
	"github.com/gin-gonic/gin"
)

// UserHandler manages users.
type UserHandler struct {
	queries *entitlement.Service
	gateway *backoffice.Gateway
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(queries *entitlement.Service, gateway *backoffice.Gateway) *UserHandler {
	return &UserHandler{queries: queries, gateway: gateway}
}

// List returns users matching the optional search term.
func (h *UserHandler) List(c *gin.Context) {
	page, errPage := parsePage(c)
	if errPage != nil {
		response.Fail(c, errPage)
		return
	}
	res, errList := h.queries.ListUsers(c.Request.Context(), c.Query("search"), page)
	if errList != nil {
		response.Fail(c, errList)
		return
	}
	response.OK(c, gin.H{
		"users": view.Users(res.Items),
		"total": res.Total,
		"page":  page.Page,
		"limit": page.Limit,
	})
}

// Get returns one user.
func (h *UserHandler) Get(c *gin.Context) {
	id, errID := parseID(c)
	if errID != nil {
		response.Fail(c, errID)
		return
	}
	user, errGet := h.queries.GetUser(c.Request.Context(), id)
	if errGet != nil {
		response.Fail(c, errGet)
		return
	}
	response.OK(c, view.User(user))
}

// Update applies a partial update to a user.
func (h *UserHandler) Update(c *gin.Context) {
	id, errID := parseID(c)
	if errID != nil {
		response.Fail(c, errID)
		return
	}
	var patch backoffice.UserPatch
	if errBind := bindPatch(c, &patch); errBind != nil {
		response.Fail(c, errBind)
		return
	}
	user, errUpdate := h.gateway.UpdateUser(c.Request.Context(), id, patch)
	if errUpdate != nil {
		response.Fail(c, errUpdate)
		return
	}
	logging.FromContext(c).WithField("target_user_id", id).Info("admin updated user")
	response.OK(c, view.User(user))
}
