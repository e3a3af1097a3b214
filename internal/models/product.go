package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Duration plans for a product's validity window.
const (
	DurationPlanMonthly   = "monthly"
	DurationPlanQuarterly = "quarterly"
	DurationPlanYearly    = "yearly"
)

// ProductSpecifications is the free-form bundle shown on the product page.
type ProductSpecifications struct {
	Duration string `json:"duration"`            // Human readable duration, e.g. "30天" or "1 year".
	Region   string `json:"region,omitempty"`    // Account region.
	Quality  string `json:"quality,omitempty"`   // Stream quality, e.g. "4K HDR".
	MaxUsers int    `json:"max_users,omitempty"` // Concurrent users sharing the account.
}

// Product is a sellable subscription slot.
type Product struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title         string          `gorm:"type:varchar(255);not null;index"` // Display title, copied onto tickets.
	Description   string          `gorm:"type:text"`                        // Long description.
	Price         decimal.Decimal `gorm:"type:decimal(20,2);not null"`      // Unit price charged at checkout.
	OriginalPrice decimal.Decimal `gorm:"type:decimal(20,2);not null"`      // Strike-through price.
	Category      string          `gorm:"type:varchar(64);index"`           // Catalog category.
	Tag           string          `gorm:"type:varchar(64)"`                 // Short badge text.
	CoverImage    string          `gorm:"type:text"`                        // Cover image URL.

	Specifications datatypes.JSONType[ProductSpecifications] // Specification bundle.
	DurationPlan   string                                    `gorm:"type:varchar(16);not null;default:''"` // monthly, quarterly, yearly or empty.

	Stock    int  `gorm:"not null;default:0"` // Advisory stock count, never decremented by checkout.
	IsActive bool `gorm:"not null"`           // Whether the product is listed and purchasable.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`       // Last update timestamp.
}
