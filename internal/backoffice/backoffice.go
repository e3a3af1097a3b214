// Package backoffice applies validated administrator edits to users, tickets and products.
package backoffice

import (
	"context"
	"strings"
	"time"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/fulfillment"
	"github.com/aifahao/streamticket/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProductInvalidator drops cached product copies after an edit.
type ProductInvalidator interface {
	Invalidate(ctx context.Context, id uint64)
}

// Gateway performs admin mutations.
type Gateway struct {
	db    *gorm.DB
	cache ProductInvalidator
}

// NewGateway builds a Gateway. cache may be nil.
func NewGateway(db *gorm.DB, cache ProductInvalidator) *Gateway {
	return &Gateway{db: db, cache: cache}
}

// UserPatch lists the user fields an admin may change.
type UserPatch struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Nickname *string `json:"nickname"`
	IsAdmin  *bool   `json:"is_admin"`
	Disabled *bool   `json:"disabled"`
}

// TicketPatch lists the ticket fields an admin may change.
type TicketPatch struct {
	AccountUsername *string    `json:"account_username"`
	AccountPassword *string    `json:"account_password"`
	ProductType     *string    `json:"product_type"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Status          *string    `json:"status"`
}

// ProductPatch lists the product fields an admin may change.
type ProductPatch struct {
	Title          *string                       `json:"title"`
	Description    *string                       `json:"description"`
	Price          *decimal.Decimal              `json:"price"`
	OriginalPrice  *decimal.Decimal              `json:"original_price"`
	Category       *string                       `json:"category"`
	Tag            *string                       `json:"tag"`
	CoverImage     *string                       `json:"cover_image"`
	Specifications *models.ProductSpecifications `json:"specifications"`
	DurationPlan   *string                       `json:"duration_plan"`
	Stock          *int                          `json:"stock"`
	IsActive       *bool                         `json:"is_active"`
}

// ProductInput is the body of a product creation.
type ProductInput struct {
	Title          string                       `json:"title"`
	Description    string                       `json:"description"`
	Price          *decimal.Decimal             `json:"price"`
	OriginalPrice  *decimal.Decimal             `json:"original_price"`
	Category       string                       `json:"category"`
	Tag            string                       `json:"tag"`
	CoverImage     string                       `json:"cover_image"`
	Specifications models.ProductSpecifications `json:"specifications"`
	DurationPlan   string                       `json:"duration_plan"`
	Stock          int                          `json:"stock"`
	IsActive       *bool                        `json:"is_active"`
}

func requiredText(field string, v *string) (string, error) {
	s := strings.TrimSpace(*v)
	if s == "" {
		return "", apperr.Validation("%s cannot be empty", field)
	}
	return s, nil
}

func validPrice(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return apperr.Validation("%s cannot be negative", field)
	}
	return nil
}

// UpdateUser applies patch to user id and returns the updated row.
func (g *Gateway) UpdateUser(ctx context.Context, id uint64, patch UserPatch) (*models.User, error) {
	updates := map[string]any{}
	if patch.Username != nil {
		username, err := requiredText("username", patch.Username)
		if err != nil {
			return nil, err
		}
		var taken int64
		if errCount := g.db.WithContext(ctx).Model(&models.User{}).
			Where("username = ? AND id <> ?", username, id).Count(&taken).Error; errCount != nil {
			return nil, apperr.FromStorage(errCount, "user")
		}
		if taken > 0 {
			return nil, apperr.Conflict("username already exists")
		}
		updates["username"] = username
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email != "" && !strings.Contains(email, "@") {
			return nil, apperr.Validation("email is invalid")
		}
		updates["email"] = email
	}
	if patch.Phone != nil {
		updates["phone"] = strings.TrimSpace(*patch.Phone)
	}
	if patch.Nickname != nil {
		updates["nickname"] = strings.TrimSpace(*patch.Nickname)
	}
	if patch.IsAdmin != nil {
		updates["is_admin"] = *patch.IsAdmin
	}
	if patch.Disabled != nil {
		updates["disabled"] = *patch.Disabled
	}

	var user models.User
	if err := g.apply(ctx, &user, id, updates, "user"); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateTicket applies patch to ticket id and returns the updated row.
// The resulting window must end after it starts.
func (g *Gateway) UpdateTicket(ctx context.Context, id uint64, patch TicketPatch) (*models.Ticket, error) {
	var current models.Ticket
	if errFind := g.db.WithContext(ctx).First(&current, id).Error; errFind != nil {
		return nil, apperr.FromStorage(errFind, "ticket")
	}

	updates := map[string]any{}
	if patch.AccountUsername != nil {
		v, err := requiredText("account_username", patch.AccountUsername)
		if err != nil {
			return nil, err
		}
		updates["account_username"] = v
	}
	if patch.AccountPassword != nil {
		v, err := requiredText("account_password", patch.AccountPassword)
		if err != nil {
			return nil, err
		}
		updates["account_password"] = v
	}
	if patch.ProductType != nil {
		v, err := requiredText("product_type", patch.ProductType)
		if err != nil {
			return nil, err
		}
		updates["product_type"] = v
	}
	if patch.Status != nil {
		status := strings.TrimSpace(*patch.Status)
		switch status {
		case models.TicketStatusActive, models.TicketStatusExpired, models.TicketStatusPending:
		default:
			return nil, apperr.Validation("status must be one of active, expired, pending")
		}
		updates["status"] = status
	}
	start, end := current.StartTime, current.EndTime
	if patch.StartTime != nil {
		start = patch.StartTime.UTC()
		updates["start_time"] = start
	}
	if patch.EndTime != nil {
		end = patch.EndTime.UTC()
		updates["end_time"] = end
	}
	if (patch.StartTime != nil || patch.EndTime != nil) && !end.After(start) {
		return nil, apperr.Validation("end_time must be after start_time")
	}

	var ticket models.Ticket
	if err := g.apply(ctx, &ticket, id, updates, "ticket"); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateProduct applies patch to product id, invalidates its cache entry and returns the updated row.
func (g *Gateway) UpdateProduct(ctx context.Context, id uint64, patch ProductPatch) (*models.Product, error) {
	updates := map[string]any{}
	if patch.Title != nil {
		v, err := requiredText("title", patch.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = v
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		if err := validPrice("price", *patch.Price); err != nil {
			return nil, err
		}
		updates["price"] = *patch.Price
	}
	if patch.OriginalPrice != nil {
		if err := validPrice("original_price", *patch.OriginalPrice); err != nil {
			return nil, err
		}
		updates["original_price"] = *patch.OriginalPrice
	}
	if patch.Category != nil {
		updates["category"] = strings.TrimSpace(*patch.Category)
	}
	if patch.Tag != nil {
		updates["tag"] = strings.TrimSpace(*patch.Tag)
	}
	if patch.CoverImage != nil {
		updates["cover_image"] = strings.TrimSpace(*patch.CoverImage)
	}
	if patch.Specifications != nil {
		if patch.Specifications.MaxUsers < 0 {
			return nil, apperr.Validation("specifications.max_users cannot be negative")
		}
		updates["specifications"] = datatypes.NewJSONType(*patch.Specifications)
	}
	if patch.DurationPlan != nil {
		plan := strings.TrimSpace(*patch.DurationPlan)
		if !fulfillment.ValidDurationPlan(plan) {
			return nil, apperr.Validation("duration_plan must be monthly, quarterly or yearly")
		}
		updates["duration_plan"] = plan
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, apperr.Validation("stock cannot be negative")
		}
		updates["stock"] = *patch.Stock
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}

	var product models.Product
	if err := g.apply(ctx, &product, id, updates, "product"); err != nil {
		return nil, err
	}
	g.invalidate(ctx, id)
	return &product, nil
}

// CreateProduct validates input and inserts a product.
func (g *Gateway) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if in.Price == nil {
		return nil, apperr.Validation("price is required")
	}
	if err := validPrice("price", *in.Price); err != nil {
		return nil, err
	}
	original := *in.Price
	if in.OriginalPrice != nil {
		if err := validPrice("original_price", *in.OriginalPrice); err != nil {
			return nil, err
		}
		original = *in.OriginalPrice
	}
	if in.Stock < 0 {
		return nil, apperr.Validation("stock cannot be negative")
	}
	if in.Specifications.MaxUsers < 0 {
		return nil, apperr.Validation("specifications.max_users cannot be negative")
	}
	plan := strings.TrimSpace(in.DurationPlan)
	if !fulfillment.ValidDurationPlan(plan) {
		return nil, apperr.Validation("duration_plan must be monthly, quarterly or yearly")
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	product := models.Product{
		Title:          title,
		Description:    in.Description,
		Price:          *in.Price,
		OriginalPrice:  original,
		Category:       strings.TrimSpace(in.Category),
		Tag:            strings.TrimSpace(in.Tag),
		CoverImage:     strings.TrimSpace(in.CoverImage),
		Specifications: datatypes.NewJSONType(in.Specifications),
		DurationPlan:   plan,
		Stock:          in.Stock,
		IsActive:       active,
	}
	if errCreate := g.db.WithContext(ctx).Create(&product).Error; errCreate != nil {
		return nil, apperr.FromStorage(errCreate, "product")
	}
	return &product, nil
}

// DeleteProduct removes product id. Products referenced by orders cannot be deleted;
// deactivate them instead.
func (g *Gateway) DeleteProduct(ctx context.Context, id uint64) error {
	errTx := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orders int64
		if errCount := tx.Model(&models.Order{}).Where("product_id = ?", id).Count(&orders).Error; errCount != nil {
			return errCount
		}
		if orders > 0 {
			return apperr.Conflict("product has %d orders; deactivate it instead", orders)
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errTx != nil {
		return apperr.FromStorage(errTx, "product")
	}
	g.invalidate(ctx, id)
	return nil
}

// apply runs updates against the row of dest's type with id and reloads it into dest.
func (g *Gateway) apply(ctx context.Context, dest any, id uint64, updates map[string]any, what string) error {
	if len(updates) == 0 {
		return apperr.Validation("no fields to update")
	}
	return apperr.FromStorage(g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(dest).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var exists int64
			if errCount := tx.Model(dest).Where("id = ?", id).Count(&exists).Error; errCount != nil {
				return errCount
			}
			if exists == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return tx.First(dest, id).Error
	}), what)
}

func (g *Gateway) invalidate(ctx context.Context, id uint64) {
	if g.cache == nil {
		return
	}
	g.cache.Invalidate(context.WithoutCancel(ctx), id)
}
