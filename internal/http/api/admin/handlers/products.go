package handlers

import (
	"github.com/aifahao/streamticket/internal/backoffice"
	"github.com/aifahao/streamticket/internal/entitlement"
	"github.com/aifahao/streamticket/internal/http/api/view"
	"github.com/aifahao/streamticket/internal/http/response"
	"github.com/aifahao/streamticket/internal/logging"
	"github.com/gin-gonic/gin"
)

// ProductHandler manages the catalog, including inactive products.
type ProductHandler struct {
	queries *entitlement.Service
	gateway *backoffice.Gateway
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(queries *entitlement.Service, gateway *backoffice.Gateway) *ProductHandler {
	return &ProductHandler{queries: queries, gateway: gateway}
}

// List returns products matching the optional search term.
func (h *ProductHandler) List(c *gin.Context) {
	page, errPage := parsePage(c)
	if errPage != nil {
		response.Fail(c, errPage)
		return
	}
	res, errList := h.queries.ListProducts(c.Request.Context(), c.Query("search"), page)
	if errList != nil {
		response.Fail(c, errList)
		return
	}
	response.OK(c, gin.H{
		"products": view.Products(res.Items),
		"total":    res.Total,
		"page":     page.Page,
		"limit":    page.Limit,
	})
}

// Get returns one product.
func (h *ProductHandler) Get(c *gin.Context) {
	id, errID := parseID(c)
	if errID != nil {
		response.Fail(c, errID)
		return
	}
	product, errGet := h.queries.GetProduct(c.Request.Context(), id)
	if errGet != nil {
		response.Fail(c, errGet)
		return
	}
	response.OK(c, view.Product(product))
}

// Create adds a product.
func (h *ProductHandler) Create(c *gin.Context) {
	var in backoffice.ProductInput
	if errBind := bindPatch(c, &in); errBind != nil {
		response.Fail(c, errBind)
		return
	}
	product, errCreate := h.gateway.CreateProduct(c.Request.Context(), in)
	if errCreate != nil {
		response.Fail(c, errCreate)
		return
	}
	logging.FromContext(c).WithField("product_id", product.ID).Info("admin created product")
	response.OK(c, view.Product(product))
}

// Update applies a partial update to a product.
func (h *ProductHandler) Update(c *gin.Context) {
	id, errID := parseID(c)
	if errID != nil {
		response.Fail(c, errID)
		return
	}
	var patch backoffice.ProductPatch
	if errBind := bindPatch(c, &patch); errBind != nil {
		response.Fail(c, errBind)
		return
	}
	product, errUpdate := h.gateway.UpdateProduct(c.Request.Context(), id, patch)
	if errUpdate != nil {
		response.Fail(c, errUpdate)
		return
	}
	logging.FromContext(c).WithField("product_id", id).Info("admin updated product")
	response.OK(c, view.Product(product))
}

// Delete removes a product that no order references.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, errID := parseID(c)
	if errID != nil {
		response.Fail(c, errID)
		return
	}
	if errDelete := h.gateway.DeleteProduct(c.Request.Context(), id); errDelete != nil {
		response.Fail(c, errDelete)
		return
	}
	logging.FromContext(c).WithField("product_id", id).Info("admin deleted product")
	response.OK(c, gin.H{"deleted": true})
}
