package models

import "time"

// User represents a storefront customer or administrator.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:varchar(191);not null;uniqueIndex"` // Unique login name.
	Email    string `gorm:"type:varchar(191);index"`                // Contact email, optional.
	Phone    string `gorm:"type:varchar(32);index"`                 // Phone used for OTP login, optional.
	Nickname string `gorm:"type:text"`                              // Display name.
	Password string `gorm:"type:text"`                              // Bcrypt hash; empty for OTP-only accounts.

	IsAdmin  bool `gorm:"not null;default:false"` // Grants access to the admin API.
	Disabled bool `gorm:"not null;default:false"` // Blocks every authenticated call when true.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`       // Last update timestamp.
}
