package handlers

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/entitlement"
	"github.com/aifahao/streamticket/internal/fulfillment"
	apihttp "github.com/aifahao/streamticket/internal/http"
	"github.com/aifahao/streamticket/internal/http/api/view"
	"github.com/aifahao/streamticket/internal/http/response"
	"github.com/gin-gonic/gin"
)

// flexID accepts a product id sent either as a JSON number or a numeric string.
type flexID uint64

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return apperr.Validation("product_id must be a positive integer")
	}
	*f = flexID(v)
	return nil
}

type checkoutItem struct {
	ProductID flexID `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

// checkoutRequest accepts either a list of items or a single legacy product_id/quantity pair.
type checkoutRequest struct {
	Items     []checkoutItem `json:"items"`
	ProductID flexID         `json:"product_id"`
	Quantity  *int           `json:"quantity"`
}

func (r checkoutRequest) lineItems() []fulfillment.LineItem {
	if len(r.Items) == 0 && r.ProductID != 0 {
		qty := 1
		if r.Quantity != nil {
			qty = *r.Quantity
		}
		return []fulfillment.LineItem{{ProductID: uint64(r.ProductID), Quantity: qty}}
	}
	items := make([]fulfillment.LineItem, 0, len(r.Items))
	for _, it := range r.Items {
		qty := 0
		if it.Quantity != nil {
			qty = *it.Quantity
		}
		items = append(items, fulfillment.LineItem{ProductID: uint64(it.ProductID), Quantity: qty})
	}
	return items
}

// OrderHandler serves checkout and order history.
type OrderHandler struct {
	engine  *fulfillment.Engine
	queries *entitlement.Service
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(engine *fulfillment.Engine, queries *entitlement.Service) *OrderHandler {
	return &OrderHandler{engine: engine, queries: queries}
}

// Create checks out the requested items for the current user.
func (h *OrderHandler) Create(c *gin.Context) {
	var body checkoutRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		if apperr.KindOf(errBind) == apperr.KindValidation {
			response.Fail(c, errBind)
			return
		}
		response.Fail(c, apperr.Validation("invalid json"))
		return
	}
	items := body.lineItems()
	if errValidate := fulfillment.ValidateItems(items); errValidate != nil {
		response.Fail(c, errValidate)
		return
	}
	results, errCheckout := h.engine.Checkout(c.Request.Context(), apihttp.UserID(c), items)
	if errCheckout != nil {
		response.Fail(c, errCheckout)
		return
	}
	response.OK(c, gin.H{"results": results})
}

// List returns the current user's orders, newest first.
func (h *OrderHandler) List(c *gin.Context) {
	page, errPage := parsePage(c)
	if errPage != nil {
		response.Fail(c, errPage)
		return
	}
	res, errList := h.queries.ListOwnOrders(c.Request.Context(), apihttp.UserID(c), c.Query("status"), page)
	if errList != nil {
		response.Fail(c, errList)
		return
	}
	response.OK(c, gin.H{
		"orders": view.Orders(res.Items),
		"total":  res.Total,
		"page":   page.Page,
		"limit":  page.Limit,
	})
}
