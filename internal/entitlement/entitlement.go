// Package entitlement answers list and detail queries over orders, tickets, users and products.
package entitlement

import (
	"context"
	"strings"
	"time"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/db"
	"github.com/aifahao/streamticket/internal/models"
	"github.com/aifahao/streamticket/internal/paging"
	"gorm.io/gorm"
)

// Service runs entitlement queries.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService builds a Service.
func NewService(conn *gorm.DB) *Service {
	return &Service{db: conn, now: time.Now}
}

// Page is a slice of rows plus the count of all rows matching the filter.
type Page[T any] struct {
	Items []T
	Total int64
}

// newestFirst orders rows by creation time, breaking ties by id.
func newestFirst(q *gorm.DB) *gorm.DB {
	return q.Order("created_at DESC").Order("id DESC")
}

func fetchPage[T any](q *gorm.DB, page paging.Page, what string, preloads ...string) (Page[T], error) {
	var total int64
	if errCount := q.Session(&gorm.Session{}).Count(&total).Error; errCount != nil {
		return Page[T]{}, apperr.FromStorage(errCount, what)
	}
	find := newestFirst(q.Session(&gorm.Session{}))
	for _, assoc := range preloads {
		find = find.Preload(assoc)
	}
	items := make([]T, 0, page.Limit)
	if errFind := page.Apply(find).Find(&items).Error; errFind != nil {
		return Page[T]{}, apperr.FromStorage(errFind, what)
	}
	return Page[T]{Items: items, Total: total}, nil
}

// ListOwnOrders lists the caller's orders, optionally filtered by status.
func (s *Service) ListOwnOrders(ctx context.Context, userID uint64, status string, page paging.Page) (Page[models.Order], error) {
	q := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if status = strings.TrimSpace(status); status != "" {
		q = q.Where("status = ?", status)
	}
	return fetchPage[models.Order](q, page, "order", "Product")
}

// ValidTicketStatus reports whether status is a known ticket status.
func ValidTicketStatus(status string) bool {
	switch status {
	case models.TicketStatusActive, models.TicketStatusExpired, models.TicketStatusPending:
		return true
	}
	return false
}

// filterTicketStatus matches on effective status: active tickets past end_time count as expired.
func filterTicketStatus(q *gorm.DB, status string, now time.Time) (*gorm.DB, error) {
	switch strings.TrimSpace(status) {
	case "":
		return q, nil
	case models.TicketStatusActive:
		return q.Where("status = ? AND end_time > ?", models.TicketStatusActive, now), nil
	case models.TicketStatusExpired:
		return q.Where("(status = ? OR (status = ? AND end_time <= ?))", models.TicketStatusExpired, models.TicketStatusActive, now), nil
	case models.TicketStatusPending:
		return q.Where("status = ?", models.TicketStatusPending), nil
	default:
		return nil, apperr.Validation("status must be one of active, expired, pending")
	}
}

// ListOwnTickets lists the caller's tickets, optionally filtered by effective status.
func (s *Service) ListOwnTickets(ctx context.Context, userID uint64, status string, page paging.Page) (Page[models.Ticket], error) {
	q := s.db.WithContext(ctx).Model(&models.Ticket{}).Where("user_id = ?", userID)
	q, errStatus := filterTicketStatus(q, status, s.now().UTC())
	if errStatus != nil {
		return Page[models.Ticket]{}, errStatus
	}
	return fetchPage[models.Ticket](q, page, "ticket")
}

// ListUsers lists every user, searching username, email and phone.
func (s *Service) ListUsers(ctx context.Context, search string, page paging.Page) (Page[models.User], error) {
	q := db.SearchAny(s.db.WithContext(ctx).Model(&models.User{}), search, "username", "email", "phone")
	return fetchPage[models.User](q, page, "user")
}

// ListTickets lists every ticket, searching account username and product type.
func (s *Service) ListTickets(ctx context.Context, search, status string, page paging.Page) (Page[models.Ticket], error) {
	q := db.SearchAny(s.db.WithContext(ctx).Model(&models.Ticket{}), search, "account_username", "product_type")
	q, errStatus := filterTicketStatus(q, status, s.now().UTC())
	if errStatus != nil {
		return Page[models.Ticket]{}, errStatus
	}
	return fetchPage[models.Ticket](q, page, "ticket")
}

// ListProducts lists every product, active or not, searching the title.
func (s *Service) ListProducts(ctx context.Context, search string, page paging.Page) (Page[models.Product], error) {
	q := db.SearchAny(s.db.WithContext(ctx).Model(&models.Product{}), search, "title")
	return fetchPage[models.Product](q, page, "product")
}

func getByID[T any](ctx context.Context, conn *gorm.DB, id uint64, what string) (*T, error) {
	var row T
	if errFind := conn.WithContext(ctx).First(&row, id).Error; errFind != nil {
		return nil, apperr.FromStorage(errFind, what)
	}
	return &row, nil
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	return getByID[models.User](ctx, s.db, id, "user")
}

// GetTicket returns one ticket.
func (s *Service) GetTicket(ctx context.Context, id uint64) (*models.Ticket, error) {
	return getByID[models.Ticket](ctx, s.db, id, "ticket")
}

// GetProduct returns one product.
func (s *Service) GetProduct(ctx context.Context, id uint64) (*models.Product, error) {
	return getByID[models.Product](ctx, s.db, id, "product")
}

// Now returns the clock used for effective ticket status.
func (s *Service) Now() time.Time {
	return s.now().UTC()
}
