package models

import "time"

// Ticket statuses.
const (
	TicketStatusActive  = "active"
	TicketStatusExpired = "expired"
	TicketStatusPending = "pending"
)

// Ticket is an issued credential lease tied to one order and one user.
type Ticket struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`    // Owning user.
	User   *User  `gorm:"foreignKey:UserID"` // Owning user record.

	OrderID uint64 `gorm:"not null;index"`     // Order that issued the ticket.
	Order   *Order `gorm:"foreignKey:OrderID"` // Issuing order record.

	Seq int `gorm:"not null"` // 1-based index within the issuing order.

	AccountUsername string `gorm:"type:varchar(255);not null;index"` // Placeholder account login.
	AccountPassword string `gorm:"type:text;not null"`               // Placeholder account password.

	OrderCreateTime time.Time `gorm:"not null"`       // Creation time of the issuing order.
	StartTime       time.Time `gorm:"not null"`       // Validity start.
	EndTime         time.Time `gorm:"not null;index"` // Validity end.

	ProductType string `gorm:"type:varchar(255);not null"`      // Product title at issuance.
	Status      string `gorm:"type:varchar(16);not null;index"` // active, expired or pending.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`       // Last update timestamp.
}

// EffectiveStatus reports the status as seen at now: an active ticket past its end time is expired.
func (t *Ticket) EffectiveStatus(now time.Time) string {
	if t.Status == TicketStatusActive && !t.EndTime.After(now) {
		return TicketStatusExpired
	}
	return t.Status
}
