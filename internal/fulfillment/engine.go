// Package fulfillment turns checkout line items into paid orders and issued tickets.
package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/catalog"
	"github.com/aifahao/streamticket/internal/events"
	"github.com/aifahao/streamticket/internal/metrics"
	"github.com/aifahao/streamticket/internal/models"
	"github.com/aifahao/streamticket/internal/security"
	"github.com/aifahao/streamticket/internal/settings"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Checkout limits.
const (
	MaxItems    = 50
	MaxQuantity = 100
)

// LineStatus is the outcome of one line item.
type LineStatus string

// Line outcomes.
const (
	LineFulfilled LineStatus = "fulfilled"
	LineSkipped   LineStatus = "skipped"
	LineFailed    LineStatus = "failed"
)

// Reasons reported for lines that were not fulfilled.
const (
	ReasonProductNotFound    = "product not found"
	ReasonProductUnavailable = "product is not available"
)

// LineItem is one requested purchase.
type LineItem struct {
	ProductID uint64
	Quantity  int
}

// LineResult reports what happened to the line item at the same index.
type LineResult struct {
	ProductID   uint64           `json:"product_id"`
	Quantity    int              `json:"quantity"`
	Status      LineStatus       `json:"status"`
	Reason      string           `json:"reason,omitempty"`
	OrderID     uint64           `json:"order_id,omitempty"`
	TicketIDs   []uint64         `json:"ticket_ids,omitempty"`
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty"`
	StartTime   *time.Time       `json:"start_time,omitempty"`
	EndTime     *time.Time       `json:"end_time,omitempty"`
}

// Engine runs checkouts.
type Engine struct {
	db            *gorm.DB
	publisher     events.Publisher
	now           func() time.Time
	accountDomain func() string
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithAccountDomain overrides the domain of generated ticket accounts.
func WithAccountDomain(domain func() string) Option {
	return func(e *Engine) { e.accountDomain = domain }
}

// NewEngine builds an Engine. A nil publisher drops events.
func NewEngine(db *gorm.DB, publisher events.Publisher, opts ...Option) *Engine {
	if publisher == nil {
		publisher = events.Noop{}
	}
	e := &Engine{
		db:            db,
		publisher:     publisher,
		now:           time.Now,
		accountDomain: settings.TicketAccountDomain,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ValidateItems checks the shape of a checkout request.
func ValidateItems(items []LineItem) error {
	if len(items) == 0 {
		return apperr.Validation("at least one item is required")
	}
	if len(items) > MaxItems {
		return apperr.Validation("at most %d items per checkout", MaxItems)
	}
	for i, item := range items {
		if item.ProductID == 0 {
			return apperr.Validation("items[%d]: product_id is required", i)
		}
		if item.Quantity < 1 || item.Quantity > MaxQuantity {
			return apperr.Validation("items[%d]: quantity must be between 1 and %d", i, MaxQuantity)
		}
	}
	return nil
}

// Checkout processes items in order inside one transaction.
// Missing products are skipped and inactive ones fail without writing anything;
// every other line writes one paid order and Quantity tickets. A storage error
// rolls back the whole checkout.
func (e *Engine) Checkout(ctx context.Context, userID uint64, items []LineItem) ([]LineResult, error) {
	if userID == 0 {
		return nil, apperr.Unauthenticated("authentication required")
	}
	if errValidate := ValidateItems(items); errValidate != nil {
		return nil, errValidate
	}

	now := e.now().UTC()
	domain := e.accountDomain()
	var results []LineResult

	errTx := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		results = make([]LineResult, 0, len(items))
		for _, item := range items {
			result, err := e.fulfillLine(tx, userID, item, now, domain)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		return nil
	})
	if errTx != nil {
		metrics.RecordCheckoutRollback()
		log.WithError(errTx).WithField("user_id", userID).Error("checkout rolled back")
		return nil, apperr.FromStorage(errTx, "order")
	}

	e.afterCommit(ctx, userID, results)
	return results, nil
}

func (e *Engine) fulfillLine(tx *gorm.DB, userID uint64, item LineItem, now time.Time, domain string) (LineResult, error) {
	result := LineResult{ProductID: item.ProductID, Quantity: item.Quantity}

	product, errLookup := catalog.LookupForCheckout(tx, item.ProductID)
	if errLookup != nil {
		return result, fmt.Errorf("lookup product %d: %w", item.ProductID, errLookup)
	}
	if product == nil {
		result.Status = LineSkipped
		result.Reason = ReasonProductNotFound
		return result, nil
	}
	if !product.IsActive {
		result.Status = LineFailed
		result.Reason = ReasonProductUnavailable
		return result, nil
	}

	total := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	order := models.Order{
		UserID:      userID,
		ProductID:   product.ID,
		Quantity:    item.Quantity,
		TotalAmount: total,
		Status:      models.OrderStatusPaid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errCreate := tx.Create(&order).Error; errCreate != nil {
		return result, fmt.Errorf("create order: %w", errCreate)
	}

	start := now
	end := start.AddDate(0, 0, DurationDays(product))
	tickets := make([]models.Ticket, 0, item.Quantity)
	for seq := 1; seq <= item.Quantity; seq++ {
		account, errAccount := security.NewPlaceholderAccount(domain)
		if errAccount != nil {
			return result, errAccount
		}
		tickets = append(tickets, models.Ticket{
			UserID:          userID,
			OrderID:         order.ID,
			Seq:             seq,
			AccountUsername: account.Username,
			AccountPassword: account.Password,
			OrderCreateTime: order.CreatedAt,
			StartTime:       start,
			EndTime:         end,
			ProductType:     product.Title,
			Status:          models.TicketStatusActive,
		})
	}
	if errCreate := tx.Create(&tickets).Error; errCreate != nil {
		return result, fmt.Errorf("create tickets: %w", errCreate)
	}

	ticketIDs := make([]uint64, len(tickets))
	for i := range tickets {
		ticketIDs[i] = tickets[i].ID
	}
	result.Status = LineFulfilled
	result.OrderID = order.ID
	result.TicketIDs = ticketIDs
	result.TotalAmount = &total
	result.StartTime = &start
	result.EndTime = &end
	return result, nil
}

// afterCommit records metrics and publishes one event per fulfilled line.
func (e *Engine) afterCommit(ctx context.Context, userID uint64, results []LineResult) {
	for _, r := range results {
		metrics.RecordCheckoutLine(string(r.Status))
		if r.Status != LineFulfilled {
			continue
		}
		metrics.RecordTicketsIssued(len(r.TicketIDs))
		ev := events.OrderFulfilled{
			OrderID:     r.OrderID,
			UserID:      userID,
			ProductID:   r.ProductID,
			Quantity:    r.Quantity,
			TotalAmount: *r.TotalAmount,
			TicketIDs:   r.TicketIDs,
			StartTime:   *r.StartTime,
			EndTime:     *r.EndTime,
		}
		if errPublish := e.publisher.PublishOrderFulfilled(ctx, ev); errPublish != nil {
			log.WithError(errPublish).WithField("order_id", r.OrderID).Warn("publish order.fulfilled")
		}
	}
}
