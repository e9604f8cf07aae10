package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	handlers "github.com/ptiporki19/pxv-pay-app-sub003/internal/adapter/handler/http"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/config"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	domainErrors "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/errors"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	httpServer "github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/http"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/metrics"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/usecase"
)

// unknownLinks answers every slug as missing
type unknownLinks struct{}

func (unknownLinks) ResolveLink(ctx context.Context, slug string) (*entity.CheckoutLinkView, error) {
	return nil, domainErrors.NewNotFoundError("checkout_link", slug)
}

func (unknownLinks) ValidateLink(ctx context.Context, slug string) (*entity.LinkValidation, error) {
	return nil, domainErrors.NewNotFoundError("checkout_link", slug)
}

func (unknownLinks) Countries(ctx context.Context, slug string) ([]entity.Country, error) {
	return nil, domainErrors.NewNotFoundError("checkout_link", slug)
}

func (unknownLinks) Methods(ctx context.Context, slug, country string) ([]entity.CheckoutMethodView, error) {
	return nil, domainErrors.NewNotFoundError("checkout_link", slug)
}

func (unknownLinks) DetectCountry(ctx context.Context, slug, ip string) (string, error) {
	return "", domainErrors.NewNotFoundError("checkout_link", slug)
}

func (unknownLinks) SubmitProof(ctx context.Context, slug string, in usecase.SubmitProofInput) (*model.Payment, error) {
	return nil, domainErrors.NewNotFoundError("checkout_link", slug)
}

func newTestServer(t *testing.T, rps float64, health map[string]httpServer.HealthCheck) *httpServer.Server {
	t.Helper()
	log := zap.NewNop()

	cfg := &config.Config{}
	cfg.Service.Name = "pxv-pay"
	cfg.Supabase.JWTSecret = "test-secret"
	cfg.Server.HTTP.RateLimit = config.RateLimitConfig{RPS: rps, Burst: 1}

	h := httpServer.Handlers{
		Checkout:      handlers.NewCheckoutHandler(unknownLinks{}, log),
		Payment:       handlers.NewPaymentHandler(nil, log),
		CheckoutLink:  handlers.NewCheckoutLinkHandler(nil, log),
		PaymentMethod: handlers.NewPaymentMethodHandler(nil, log),
		Notification:  handlers.NewNotificationHandler(nil, 0, log),
		Dashboard:     handlers.NewDashboardHandler(nil, log),
	}
	return httpServer.NewServer(cfg, log, metrics.New(), h, health)
}

func do(s *httpServer.Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("X-Real-IP", "198.51.100.7")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		s := newTestServer(t, 0, map[string]httpServer.HealthCheck{
			"database": func(ctx context.Context) error { return nil },
		})

		rec := do(s, http.MethodGet, "/health")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy","service":"pxv-pay","checks":{"database":"ok"}}`, rec.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		s := newTestServer(t, 0, map[string]httpServer.HealthCheck{
			"database": func(ctx context.Context) error { return errors.New("connection refused") },
		})

		rec := do(s, http.MethodGet, "/health")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, 0, nil)
	do(s, http.MethodGet, "/api/checkout/missing-link")

	rec := do(s, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pxvpay_http_requests_total")
}

func TestServer_CheckoutRateLimit(t *testing.T) {
	s := newTestServer(t, 0.01, nil)

	first := do(s, http.MethodGet, "/api/checkout/missing-link/validate")
	second := do(s, http.MethodGet, "/api/checkout/missing-link/validate")

	assert.Equal(t, http.StatusNotFound, first.Code)
	assert.Contains(t, first.Body.String(), `"valid":false`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "TOO_MANY_REQUESTS")
}

func TestServer_MerchantRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, 0, nil)

	tests := []struct {
		name     string
		method   string
		target   string
		wantCode string
	}{
		{"payments", http.MethodGet, "/api/v1/payments", "MISSING_AUTH_HEADER"},
		{"verify", http.MethodPost, "/api/v1/payments/5f0e0c3e-3f55-4a8e-9c49-2a1f58a6e0d1/verify", "MISSING_AUTH_HEADER"},
		{"dashboard", http.MethodGet, "/api/v1/dashboard/stats", "MISSING_AUTH_HEADER"},
		{"query token only on the stream", http.MethodGet, "/api/v1/notifications?access_token=abc", "MISSING_AUTH_HEADER"},
		{"stream query token is checked", http.MethodGet, "/api/v1/notifications/stream?access_token=abc", "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, tt.method, tt.target)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}
