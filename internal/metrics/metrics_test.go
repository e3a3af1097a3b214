package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", Handler())

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/products/:id", "200"))
	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/products/:id", "200"))
	if after-before != 2 {
		t.Fatalf("expected 2 requests under one template, got %v", after-before)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "streamticket_http_requests_total") {
		t.Fatalf("metrics output missing request counter")
	}
}

func TestCheckoutCounters(t *testing.T) {
	before := testutil.ToFloat64(checkoutLines.WithLabelValues("skipped"))
	RecordCheckoutLine("skipped")
	if got := testutil.ToFloat64(checkoutLines.WithLabelValues("skipped")); got-before != 1 {
		t.Fatalf("expected skipped counter to grow by 1, got %v", got-before)
	}
	issued := testutil.ToFloat64(ticketsIssued)
	RecordTicketsIssued(3)
	if got := testutil.ToFloat64(ticketsIssued); got-issued != 3 {
		t.Fatalf("expected 3 tickets recorded, got %v", got-issued)
	}
}
