package entitlement

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/models"
	"github.com/aifahao/streamticket/internal/paging"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

func openEntitlementDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:entitlement_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.Ticket{}))
	return conn
}

func newTestService(conn *gorm.DB) *Service {
	s := NewService(conn)
	s.now = func() time.Time { return testNow }
	return s
}

func seedOrders(t *testing.T, conn *gorm.DB, userID, productID uint64, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		o := models.Order{
			UserID:      userID,
			ProductID:   productID,
			Quantity:    1,
			TotalAmount: decimal.RequireFromString("18"),
			Status:      models.OrderStatusPaid,
			CreatedAt:   testNow.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, conn.Create(&o).Error)
	}
}

func TestListOwnOrdersPaginates(t *testing.T) {
	conn := openEntitlementDB(t)
	alice := models.User{Username: "alice"}
	bob := models.User{Username: "bob"}
	require.NoError(t, conn.Create(&alice).Error)
	require.NoError(t, conn.Create(&bob).Error)
	product := models.Product{Title: "Netflix", Price: decimal.RequireFromString("18"), OriginalPrice: decimal.Zero, IsActive: true}
	require.NoError(t, conn.Create(&product).Error)
	seedOrders(t, conn, alice.ID, product.ID, 25)
	seedOrders(t, conn, bob.ID, product.ID, 3)

	svc := newTestService(conn)
	page, err := paging.Parse("1", "20")
	require.NoError(t, err)
	first, err := svc.ListOwnOrders(context.Background(), alice.ID, models.OrderStatusPaid, page)
	require.NoError(t, err)
	require.Len(t, first.Items, 20)
	require.EqualValues(t, 25, first.Total)
	require.True(t, first.Items[0].CreatedAt.After(first.Items[19].CreatedAt), "newest first")
	require.NotNil(t, first.Items[0].Product)
	require.Equal(t, "Netflix", first.Items[0].Product.Title)
	for _, o := range first.Items {
		require.Equal(t, alice.ID, o.UserID)
	}

	second, err := svc.ListOwnOrders(context.Background(), alice.ID, "", paging.Page{Page: 2, Limit: 20})
	require.NoError(t, err)
	require.Len(t, second.Items, 5)
	require.EqualValues(t, 25, second.Total)

	again, err := svc.ListOwnOrders(context.Background(), alice.ID, models.OrderStatusPaid, page)
	require.NoError(t, err)
	require.Equal(t, first.Total, again.Total)
	require.Equal(t, first.Items[0].ID, again.Items[0].ID)

	none, err := svc.ListOwnOrders(context.Background(), alice.ID, "cancelled", page)
	require.NoError(t, err)
	require.Zero(t, none.Total)
}

func TestListOwnTicketsEffectiveStatus(t *testing.T) {
	conn := openEntitlementDB(t)
	svc := newTestService(conn)
	tickets := []models.Ticket{
		{UserID: 1, OrderID: 1, Seq: 1, AccountUsername: "a", AccountPassword: "p", ProductType: "x", Status: models.TicketStatusActive, StartTime: testNow.Add(-time.Hour), EndTime: testNow.Add(time.Hour)},
		{UserID: 1, OrderID: 1, Seq: 2, AccountUsername: "b", AccountPassword: "p", ProductType: "x", Status: models.TicketStatusActive, StartTime: testNow.Add(-48 * time.Hour), EndTime: testNow.Add(-time.Hour)},
		{UserID: 1, OrderID: 2, Seq: 1, AccountUsername: "c", AccountPassword: "p", ProductType: "x", Status: models.TicketStatusExpired, StartTime: testNow, EndTime: testNow.Add(time.Hour)},
		{UserID: 1, OrderID: 3, Seq: 1, AccountUsername: "d", AccountPassword: "p", ProductType: "x", Status: models.TicketStatusPending, StartTime: testNow, EndTime: testNow.Add(time.Hour)},
		{UserID: 2, OrderID: 4, Seq: 1, AccountUsername: "e", AccountPassword: "p", ProductType: "x", Status: models.TicketStatusActive, StartTime: testNow, EndTime: testNow.Add(time.Hour)},
	}
	require.NoError(t, conn.Create(&tickets).Error)

	cases := map[string][]string{
		"":                         {"a", "b", "c", "d"},
		models.TicketStatusActive:  {"a"},
		models.TicketStatusExpired: {"b", "c"},
		models.TicketStatusPending: {"d"},
	}
	for status, want := range cases {
		res, err := svc.ListOwnTickets(context.Background(), 1, status, paging.Default())
		require.NoError(t, err)
		got := make([]string, 0, len(res.Items))
		for _, ticket := range res.Items {
			got = append(got, ticket.AccountUsername)
		}
		require.ElementsMatch(t, want, got, "status %q", status)
		require.EqualValues(t, len(want), res.Total)
	}

	_, err := svc.ListOwnTickets(context.Background(), 1, "bogus", paging.Default())
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	require.Equal(t, models.TicketStatusExpired, tickets[1].EffectiveStatus(testNow))
}

func TestListProductsSearchIsCaseInsensitive(t *testing.T) {
	conn := openEntitlementDB(t)
	for _, title := range []string{"Netflix 4K 月付", "NETFLIX 独享", "Disney+ 独享", "my netflix pack"} {
		p := models.Product{Title: title, Price: decimal.RequireFromString("1"), OriginalPrice: decimal.Zero}
		require.NoError(t, conn.Create(&p).Error)
	}
	res, err := newTestService(conn).ListProducts(context.Background(), "Netflix", paging.Default())
	require.NoError(t, err)
	require.EqualValues(t, 3, res.Total)
	for _, p := range res.Items {
		require.Contains(t, []string{"Netflix 4K 月付", "NETFLIX 独享", "my netflix pack"}, p.Title)
	}
}

func TestListUsersSearchAcrossFields(t *testing.T) {
	conn := openEntitlementDB(t)
	users := []models.User{
		{Username: "alice", Email: "alice@mail.test"},
		{Username: "bob", Phone: "13800138001"},
		{Username: "carol", Email: "CAROL@Mail.test"},
	}
	require.NoError(t, conn.Create(&users).Error)
	svc := newTestService(conn)

	res, err := svc.ListUsers(context.Background(), "mail.TEST", paging.Default())
	require.NoError(t, err)
	require.EqualValues(t, 2, res.Total)

	res, err = svc.ListUsers(context.Background(), "138001", paging.Default())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.Equal(t, "bob", res.Items[0].Username)
}

func TestGetMissingIsNotFound(t *testing.T) {
	svc := newTestService(openEntitlementDB(t))
	_, err := svc.GetTicket(context.Background(), 77)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	require.Equal(t, "ticket not found", apperr.PublicMessage(err))
}
