package handlers

import (
	"strings"

	"github.com/aifahao/streamticket/internal/catalog"
	"github.com/aifahao/streamticket/internal/http/api/view"
	"github.com/aifahao/streamticket/internal/http/response"
	"github.com/gin-gonic/gin"
)

// ProductHandler serves the public catalog.
type ProductHandler struct {
	catalog *catalog.Catalog
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(c *catalog.Catalog) *ProductHandler {
	return &ProductHandler{catalog: c}
}

// List returns active products, optionally filtered by category.
func (h *ProductHandler) List(c *gin.Context) {
	page, errPage := parsePage(c)
	if errPage != nil {
		response.Fail(c, errPage)
		return
	}
	filter := catalog.ListFilter{Category: strings.TrimSpace(c.Query("category"))}
	res, errList := h.catalog.List(c.Request.Context(), filter, page)
	if errList != nil {
		response.Fail(c, errList)
		return
	}
	response.OK(c, gin.H{
		"products": view.Products(res.Products),
		"total":    res.Total,
		"page":     page.Page,
		"limit":    page.Limit,
	})
}

// Get returns one product by id.
func (h *ProductHandler) Get(c *gin.Context) {
	id, errID := parseID(c)
	if errID != nil {
		response.Fail(c, errID)
		return
	}
	product, errGet := h.catalog.Get(c.Request.Context(), id)
	if errGet != nil {
		response.Fail(c, errGet)
		return
	}
	response.OK(c, view.Product(product))
}
