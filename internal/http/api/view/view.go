// Package view formats models into response payloads shared by the front and admin APIs.
package view

import (
	"time"

	"github.com/aifahao/streamticket/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Money renders an amount with two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// User maps a user for API responses. The password hash is never included.
func User(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"phone":      u.Phone,
		"nickname":   u.Nickname,
		"is_admin":   u.IsAdmin,
		"disabled":   u.Disabled,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

// Product maps a product.
func Product(p *models.Product) gin.H {
	return gin.H{
		"id":             p.ID,
		"title":          p.Title,
		"description":    p.Description,
		"price":          Money(p.Price),
		"original_price": Money(p.OriginalPrice),
		"category":       p.Category,
		"tag":            p.Tag,
		"cover_image":    p.CoverImage,
		"specifications": p.Specifications.Data(),
		"duration_plan":  p.DurationPlan,
		"stock":          p.Stock,
		"is_active":      p.IsActive,
		"created_at":     p.CreatedAt,
		"updated_at":     p.UpdatedAt,
	}
}

// Products maps a product slice.
func Products(items []models.Product) []gin.H {
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, Product(&items[i]))
	}
	return out
}

// Order maps an order, including the product title when preloaded.
func Order(o *models.Order) gin.H {
	item := gin.H{
		"id":           o.ID,
		"user_id":      o.UserID,
		"product_id":   o.ProductID,
		"quantity":     o.Quantity,
		"total_amount": Money(o.TotalAmount),
		"status":       o.Status,
		"created_at":   o.CreatedAt,
	}
	if o.Product != nil {
		item["product"] = gin.H{
			"id":          o.Product.ID,
			"title":       o.Product.Title,
			"cover_image": o.Product.CoverImage,
		}
	}
	return item
}

// Orders maps an order slice.
func Orders(items []models.Order) []gin.H {
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, Order(&items[i]))
	}
	return out
}

// Ticket maps a ticket, reporting its effective status at now.
func Ticket(t *models.Ticket, now time.Time) gin.H {
	return gin.H{
		"id":                t.ID,
		"user_id":           t.UserID,
		"order_id":          t.OrderID,
		"seq":               t.Seq,
		"account_username":  t.AccountUsername,
		"account_password":  t.AccountPassword,
		"order_create_time": t.OrderCreateTime,
		"start_time":        t.StartTime,
		"end_time":          t.EndTime,
		"product_type":      t.ProductType,
		"status":            t.EffectiveStatus(now),
		"stored_status":     t.Status,
		"created_at":        t.CreatedAt,
	}
}

// Tickets maps a ticket slice.
func Tickets(items []models.Ticket, now time.Time) []gin.H {
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, Ticket(&items[i], now))
	}
	return out
}

// Users maps a user slice.
func Users(items []models.User) []gin.H {
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, User(&items[i]))
	}
	return out
}
