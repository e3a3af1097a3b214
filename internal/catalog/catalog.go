// Package catalog serves product reads with an optional redis read-through cache.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/models"
	"github.com/aifahao/streamticket/internal/paging"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Catalog reads products.
type Catalog struct {
	db    *gorm.DB
	cache Cache
	ttl   time.Duration
}

// New builds a Catalog. A nil cache reads straight from the database.
func New(db *gorm.DB, cache Cache, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Catalog{db: db, cache: cache, ttl: ttl}
}

// ListFilter narrows List.
type ListFilter struct {
	Category string
}

// ListResult is one page of products plus the total match count.
type ListResult struct {
	Products []models.Product
	Total    int64
}

// Get returns the product with id, active or not.
func (c *Catalog) Get(ctx context.Context, id uint64) (*models.Product, error) {
	key := fmt.Sprintf(productKey, id)
	if c.cache != nil {
		raw, ok, errGet := c.cache.Get(ctx, key)
		switch {
		case errGet != nil:
			log.WithError(errGet).Warn("catalog: cache read failed")
		case ok:
			var product models.Product
			if errDecode := json.Unmarshal(raw, &product); errDecode == nil {
				return &product, nil
			}
			log.WithField("key", key).Warn("catalog: dropping undecodable cache entry")
		}
	}

	var product models.Product
	if errFind := c.db.WithContext(ctx).First(&product, id).Error; errFind != nil {
		return nil, apperr.FromStorage(errFind, "product")
	}

	if c.cache != nil {
		if raw, errEncode := json.Marshal(&product); errEncode == nil {
			if errSet := c.cache.Set(ctx, key, raw, c.ttl); errSet != nil {
				log.WithError(errSet).Warn("catalog: cache write failed")
			}
		}
	}
	return &product, nil
}

// List returns active products, newest first.
func (c *Catalog) List(ctx context.Context, filter ListFilter, page paging.Page) (ListResult, error) {
	q := c.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)
	if category := strings.TrimSpace(filter.Category); category != "" {
		q = q.Where("category = ?", category)
	}

	var total int64
	if errCount := q.Session(&gorm.Session{}).Count(&total).Error; errCount != nil {
		return ListResult{}, apperr.FromStorage(errCount, "product")
	}
	products := make([]models.Product, 0, page.Limit)
	if errFind := page.Apply(q.Session(&gorm.Session{}).Order("created_at DESC").Order("id DESC")).Find(&products).Error; errFind != nil {
		return ListResult{}, apperr.FromStorage(errFind, "product")
	}
	return ListResult{Products: products, Total: total}, nil
}

// Invalidate drops the cached copy of product id.
func (c *Catalog) Invalidate(ctx context.Context, id uint64) {
	if c.cache == nil {
		return
	}
	if errDel := c.cache.Del(ctx, fmt.Sprintf(productKey, id)); errDel != nil {
		log.WithError(errDel).WithField("product_id", id).Warn("catalog: cache invalidate failed")
	}
}

// LookupForCheckout reads a product inside tx, bypassing the cache so the price is current.
// A missing product is (nil, nil).
func LookupForCheckout(tx *gorm.DB, id uint64) (*models.Product, error) {
	var products []models.Product
	if errFind := tx.Where("id = ?", id).Limit(1).Find(&products).Error; errFind != nil {
		return nil, errFind
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}
