package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRoute(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/checkout/:slug", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	for _, slug := range []string{"a-link", "b-link"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/checkout/"+slug, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/checkout/:slug", "200")))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pxvpay_http_requests_total"))
}

func TestRecorder(t *testing.T) {
	m := New()
	m.PaymentSubmitted("XAF", "accepted")
	m.PaymentVerification("completed", "ok")
	m.NotificationDispatch("publish", "ok")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.PaymentsSubmitted.WithLabelValues("XAF", "accepted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PaymentVerifications.WithLabelValues("completed", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.NotificationsDispatch.WithLabelValues("publish", "ok")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.PaymentVerification("failed", "ok") })
}
