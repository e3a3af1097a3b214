package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/models"
	"github.com/aifahao/streamticket/internal/paging"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	hits int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	v, ok := m.data[key]
	if ok {
		m.hits++
	}
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func openCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:catalog_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	if errMigrate := conn.AutoMigrate(&models.Product{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func createProduct(t *testing.T, conn *gorm.DB, title, category string, active bool) models.Product {
	t.Helper()
	p := models.Product{
		Title:          title,
		Price:          decimal.RequireFromString("18.00"),
		OriginalPrice:  decimal.RequireFromString("25.00"),
		Category:       category,
		Specifications: datatypes.NewJSONType(models.ProductSpecifications{Duration: "30天", MaxUsers: 5}),
		IsActive:       active,
	}
	if errCreate := conn.Create(&p).Error; errCreate != nil {
		t.Fatalf("create product: %v", errCreate)
	}
	return p
}

func TestGetReadsThroughCache(t *testing.T) {
	conn := openCatalogDB(t)
	cache := newMemCache()
	cat := New(conn, cache, time.Minute)
	p := createProduct(t, conn, "Netflix 4K", "hot-sale", true)

	first, err := cat.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if conn.Model(&models.Product{}).Where("id = ?", p.ID).Update("title", "renamed").Error != nil {
		t.Fatalf("rename failed")
	}
	second, err := cat.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get cached: %v", err)
	}
	if cache.hits != 1 || second.Title != first.Title {
		t.Fatalf("expected cached title %q, got %q (hits=%d)", first.Title, second.Title, cache.hits)
	}
	if !second.Price.Equal(decimal.RequireFromString("18")) || second.Specifications.Data().MaxUsers != 5 {
		t.Fatalf("cached product lost fields: %+v", second)
	}

	cat.Invalidate(context.Background(), p.ID)
	third, err := cat.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if third.Title != "renamed" {
		t.Fatalf("expected fresh title after invalidate, got %q", third.Title)
	}
}

func TestGetMissingProduct(t *testing.T) {
	cat := New(openCatalogDB(t), nil, 0)
	_, err := cat.Get(context.Background(), 999)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListActiveByCategory(t *testing.T) {
	conn := openCatalogDB(t)
	createProduct(t, conn, "a", "hot-sale", true)
	createProduct(t, conn, "b", "hot-sale", false)
	createProduct(t, conn, "c", "solo", true)
	createProduct(t, conn, "d", "hot-sale", true)
	cat := New(conn, nil, 0)

	res, err := cat.List(context.Background(), ListFilter{Category: "hot-sale"}, paging.Page{Page: 1, Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 2 || len(res.Products) != 1 || res.Products[0].Title != "d" {
		t.Fatalf("unexpected page %+v", res)
	}
}

func TestLookupForCheckoutMissing(t *testing.T) {
	conn := openCatalogDB(t)
	p, err := LookupForCheckout(conn, 12345)
	if err != nil || p != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", p, err)
	}
}
