package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/events"
	"github.com/aifahao/streamticket/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderFulfilled
}

func (p *recordingPublisher) PublishOrderFulfilled(_ context.Context, ev events.OrderFulfilled) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func openEngineDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:fulfillment_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.Ticket{}))
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB) models.User {
	t.Helper()
	u := models.User{Username: fmt.Sprintf("buyer_%d", time.Now().UnixNano())}
	require.NoError(t, conn.Create(&u).Error)
	return u
}

func seedProduct(t *testing.T, conn *gorm.DB, price, duration, plan string, active bool) models.Product {
	t.Helper()
	p := models.Product{
		Title:          "Netflix 4K " + duration,
		Price:          decimal.RequireFromString(price),
		OriginalPrice:  decimal.RequireFromString(price),
		Specifications: datatypes.NewJSONType(models.ProductSpecifications{Duration: duration}),
		DurationPlan:   plan,
		Stock:          10,
		IsActive:       active,
	}
	require.NoError(t, conn.Create(&p).Error)
	return p
}

func newTestEngine(conn *gorm.DB, pub events.Publisher) *Engine {
	return NewEngine(conn, pub,
		WithClock(func() time.Time { return fixedNow }),
		WithAccountDomain(func() string { return "netflix.com" }),
	)
}

func TestCheckoutSingleLineMonthly(t *testing.T) {
	conn := openEngineDB(t)
	user := seedUser(t, conn)
	product := seedProduct(t, conn, "18.00", "30天", "", true)
	pub := &recordingPublisher{}

	results, err := newTestEngine(conn, pub).Checkout(context.Background(), user.ID, []LineItem{{ProductID: product.ID, Quantity: 2}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, LineFulfilled, results[0].Status)
	require.Len(t, results[0].TicketIDs, 2)

	var orders []models.Order
	require.NoError(t, conn.Find(&orders).Error)
	require.Len(t, orders, 1)
	require.True(t, orders[0].TotalAmount.Equal(decimal.RequireFromString("36.00")), "total %s", orders[0].TotalAmount)
	require.Equal(t, models.OrderStatusPaid, orders[0].Status)
	require.Equal(t, user.ID, orders[0].UserID)

	var tickets []models.Ticket
	require.NoError(t, conn.Order("seq ASC").Find(&tickets).Error)
	require.Len(t, tickets, 2)
	for i, ticket := range tickets {
		require.Equal(t, i+1, ticket.Seq)
		require.Equal(t, orders[0].ID, ticket.OrderID)
		require.Equal(t, 30*24*time.Hour, ticket.EndTime.Sub(ticket.StartTime))
		require.Equal(t, models.TicketStatusActive, ticket.Status)
		require.Equal(t, product.Title, ticket.ProductType)
		require.Regexp(t, `^user_[0-9a-f]{8}@netflix\.com$`, ticket.AccountUsername)
		require.Regexp(t, `^pass_[0-9a-f]{12}$`, ticket.AccountPassword)
	}
	require.NotEqual(t, tickets[0].AccountUsername, tickets[1].AccountUsername)

	require.Len(t, pub.events, 1)
	require.Equal(t, orders[0].ID, pub.events[0].OrderID)
	require.ElementsMatch(t, results[0].TicketIDs, pub.events[0].TicketIDs)

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, product.ID).Error)
	require.Equal(t, 10, reloaded.Stock, "stock is advisory and never decremented")
}

func TestCheckoutMissingProductIsSkipped(t *testing.T) {
	conn := openEngineDB(t)
	user := seedUser(t, conn)
	pub := &recordingPublisher{}

	results, err := newTestEngine(conn, pub).Checkout(context.Background(), user.ID, []LineItem{{ProductID: 9999, Quantity: 1}})
	require.NoError(t, err)
	require.Equal(t, []LineResult{{ProductID: 9999, Quantity: 1, Status: LineSkipped, Reason: ReasonProductNotFound}}, results)

	var orderCount, ticketCount int64
	conn.Model(&models.Order{}).Count(&orderCount)
	conn.Model(&models.Ticket{}).Count(&ticketCount)
	require.Zero(t, orderCount)
	require.Zero(t, ticketCount)
	require.Empty(t, pub.events)
}

func TestCheckoutMixedLinesKeepCallerOrder(t *testing.T) {
	conn := openEngineDB(t)
	user := seedUser(t, conn)
	quarterly := seedProduct(t, conn, "50.00", "一季", "", true)
	yearly := seedProduct(t, conn, "198.00", "", models.DurationPlanYearly, true)
	inactive := seedProduct(t, conn, "10.00", "30天", "", false)

	items := []LineItem{
		{ProductID: yearly.ID, Quantity: 1},
		{ProductID: 424242, Quantity: 3},
		{ProductID: inactive.ID, Quantity: 1},
		{ProductID: quarterly.ID, Quantity: 3},
	}
	results, err := newTestEngine(conn, nil).Checkout(context.Background(), user.ID, items)
	require.NoError(t, err)
	require.Len(t, results, 4)
	require.Equal(t, LineFulfilled, results[0].Status)
	require.Equal(t, LineSkipped, results[1].Status)
	require.Equal(t, LineFailed, results[2].Status)
	require.Equal(t, ReasonProductUnavailable, results[2].Reason)
	require.Equal(t, LineFulfilled, results[3].Status)

	require.Equal(t, fixedNow.AddDate(0, 0, YearlyDays), *results[0].EndTime)
	require.Equal(t, fixedNow.AddDate(0, 0, QuarterlyDays), *results[3].EndTime)
	require.True(t, results[3].TotalAmount.Equal(decimal.RequireFromString("150")))

	var orderCount, ticketCount int64
	conn.Model(&models.Order{}).Count(&orderCount)
	conn.Model(&models.Ticket{}).Count(&ticketCount)
	require.EqualValues(t, 2, orderCount)
	require.EqualValues(t, 4, ticketCount)

	var seqs []int
	require.NoError(t, conn.Model(&models.Ticket{}).Where("order_id = ?", results[3].OrderID).Order("id ASC").Pluck("seq", &seqs).Error)
	require.Equal(t, []int{1, 2, 3}, seqs)
}

func TestCheckoutRollsBackOnStorageError(t *testing.T) {
	conn := openEngineDB(t)
	user := seedUser(t, conn)
	first := seedProduct(t, conn, "18.00", "30天", "", true)
	second := seedProduct(t, conn, "45.00", "30天", "", true)

	calls := 0
	require.NoError(t, conn.Callback().Create().Before("gorm:create").Register("test:fail_second_ticket_batch", func(tx *gorm.DB) {
		if tx.Statement.Table == "tickets" {
			calls++
			if calls == 2 {
				tx.AddError(errors.New("disk full"))
			}
		}
	}))

	pub := &recordingPublisher{}
	_, err := newTestEngine(conn, pub).Checkout(context.Background(), user.ID, []LineItem{
		{ProductID: first.ID, Quantity: 1},
		{ProductID: second.ID, Quantity: 2},
	})
	require.Error(t, err)
	require.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	require.Equal(t, "internal server error", apperr.PublicMessage(err))

	var orderCount, ticketCount int64
	conn.Model(&models.Order{}).Count(&orderCount)
	conn.Model(&models.Ticket{}).Count(&ticketCount)
	require.Zero(t, orderCount, "first line must be rolled back")
	require.Zero(t, ticketCount)
	require.Empty(t, pub.events)
}

func TestCheckoutTimeoutIsRetryable(t *testing.T) {
	conn := openEngineDB(t)
	user := seedUser(t, conn)
	product := seedProduct(t, conn, "18.00", "30天", "", true)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	_, err := newTestEngine(conn, nil).Checkout(ctx, user.ID, []LineItem{{ProductID: product.ID, Quantity: 1}})
	require.Error(t, err)
	require.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
}

func TestValidateItems(t *testing.T) {
	tooMany := make([]LineItem, MaxItems+1)
	for i := range tooMany {
		tooMany[i] = LineItem{ProductID: 1, Quantity: 1}
	}
	for name, items := range map[string][]LineItem{
		"empty":          nil,
		"too many":       tooMany,
		"zero product":   {{ProductID: 0, Quantity: 1}},
		"zero quantity":  {{ProductID: 1, Quantity: 0}},
		"quantity limit": {{ProductID: 1, Quantity: MaxQuantity + 1}},
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, apperr.KindValidation, apperr.KindOf(ValidateItems(items)))
		})
	}
	require.NoError(t, ValidateItems([]LineItem{{ProductID: 1, Quantity: MaxQuantity}}))
}

func TestCheckoutRequiresUser(t *testing.T) {
	_, err := newTestEngine(openEngineDB(t), nil).Checkout(context.Background(), 0, []LineItem{{ProductID: 1, Quantity: 1}})
	require.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}
