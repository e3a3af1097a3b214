// Package paging parses page/limit query parameters.
package paging

import (
	"strconv"
	"strings"

	"github.com/aifahao/streamticket/internal/apperr"
	"gorm.io/gorm"
)

// Defaults and bounds for list endpoints.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is a validated 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Default returns page 1 with the default limit.
func Default() Page {
	return Page{Page: DefaultPage, Limit: DefaultLimit}
}

// Parse validates raw page and limit strings. Empty strings take defaults,
// non-numeric or values below 1 are rejected and limit is clamped to MaxLimit.
func Parse(rawPage, rawLimit string) (Page, error) {
	p := Default()
	if v := strings.TrimSpace(rawPage); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Page{}, apperr.Validation("page must be a positive integer")
		}
		p.Page = n
	}
	if v := strings.TrimSpace(rawLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Page{}, apperr.Validation("limit must be a positive integer")
		}
		p.Limit = min(n, MaxLimit)
	}
	return p, nil
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Apply adds LIMIT/OFFSET to q.
func (p Page) Apply(q *gorm.DB) *gorm.DB {
	return q.Offset(p.Offset()).Limit(p.Limit)
}
