package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatusPaid is the only order status; payment is simulated as always successful.
const OrderStatusPaid = "paid"

// Order records one user buying one product at a given quantity.
type Order struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`    // Owning user.
	User   *User  `gorm:"foreignKey:UserID"` // Owning user record.

	ProductID uint64   `gorm:"not null;index"`       // Purchased product.
	Product   *Product `gorm:"foreignKey:ProductID"` // Purchased product record.

	Quantity    int             `gorm:"not null"`                        // Units bought; one ticket per unit.
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,2);not null"`     // Price snapshot times quantity.
	Status      string          `gorm:"type:varchar(16);not null;index"` // Order status.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`       // Last update timestamp.
}
