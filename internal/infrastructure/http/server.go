package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	handlers "github.com/ptiporki19/pxv-pay-app-sub003/internal/adapter/handler/http"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/config"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/metrics"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/middleware/auth"
	apperrors "github.com/ptiporki19/pxv-pay-app-sub003/pkg/errors"
	"github.com/ptiporki19/pxv-pay-app-sub003/pkg/logger"
)

const streamPath = "/api/v1/notifications/stream"

// Handlers groups the HTTP handlers mounted by the server
type Handlers struct {
	Checkout      *handlers.CheckoutHandler
	Payment       *handlers.PaymentHandler
	CheckoutLink  *handlers.CheckoutLinkHandler
	PaymentMethod *handlers.PaymentMethodHandler
	Notification  *handlers.NotificationHandler
	Dashboard     *handlers.DashboardHandler
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	metrics  *metrics.Metrics
	handlers Handlers
	health   map[string]HealthCheck

	// baseCtx parents every request context; cancelling it ends SSE streams.
	baseCtx     context.Context
	stopStreams context.CancelFunc
}

func NewServer(cfg *config.Config, log *zap.Logger, m *metrics.Metrics, h Handlers, health map[string]HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewRequestValidator()
	logger.WithEchoLogger(e, log)

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(logger.NewEchoRequestLogger(log, "/health", "/metrics"))
	e.Use(middleware.Recover())
	e.Use(m.Middleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins(cfg.Server.HTTP.CORSOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if cfg.Server.HTTP.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.HTTP.BodyLimit))
	}

	baseCtx, stopStreams := context.WithCancel(context.Background())
	s := &Server{
		config:      cfg,
		logger:      log,
		echo:        e,
		metrics:     m,
		handlers:    h,
		health:      health,
		baseCtx:     baseCtx,
		stopStreams: stopStreams,
	}
	s.setupRoutes()
	return s
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	// WriteTimeout stays 0 by default so SSE streams are not cut off.
	srv := &http.Server{
		Addr:              addr,
		ReadTimeout:       s.config.Server.HTTP.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.config.Server.HTTP.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}
	if err := s.echo.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.stopStreams()
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthHandler)
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	// Public checkout routes, rate limited per client IP
	checkout := s.echo.Group("/api/checkout/:slug", s.rateLimiter())
	checkout.GET("", s.handlers.Checkout.GetLink)
	checkout.GET("/validate", s.handlers.Checkout.Validate)
	checkout.GET("/countries", s.handlers.Checkout.Countries)
	checkout.GET("/methods", s.handlers.Checkout.Methods)
	checkout.GET("/detect-country", s.handlers.Checkout.DetectCountry)
	checkout.POST("/submit", s.handlers.Checkout.Submit)

	jwtConfig := auth.JWTConfig{
		Secret:          s.config.Supabase.JWTSecret,
		Audience:        "authenticated",
		Logger:          s.logger,
		QueryTokenPaths: []string{streamPath},
	}

	// Merchant routes (require JWT authentication)
	v1 := s.echo.Group("/api/v1", auth.JWTMiddleware(jwtConfig))

	payments := v1.Group("/payments")
	payments.GET("", s.handlers.Payment.ListPayments)
	payments.GET("/:id", s.handlers.Payment.GetPayment)
	payments.POST("/:id/verify", s.handlers.Payment.VerifyPayment)
	payments.GET("/:id/proof", s.handlers.Payment.GetProof)

	v1.GET("/dashboard/stats", s.handlers.Dashboard.Stats)

	links := v1.Group("/checkout-links")
	links.GET("", s.handlers.CheckoutLink.List)
	links.POST("", s.handlers.CheckoutLink.Create)
	links.GET("/:id", s.handlers.CheckoutLink.Get)
	links.PUT("/:id", s.handlers.CheckoutLink.Update)
	links.PATCH("/:id/status", s.handlers.CheckoutLink.SetStatus)
	links.DELETE("/:id", s.handlers.CheckoutLink.Delete)

	methods := v1.Group("/payment-methods")
	methods.GET("", s.handlers.PaymentMethod.List)
	methods.POST("", s.handlers.PaymentMethod.Create)
	methods.GET("/:id", s.handlers.PaymentMethod.Get)
	methods.PUT("/:id", s.handlers.PaymentMethod.Update)
	methods.DELETE("/:id", s.handlers.PaymentMethod.Delete)

	notifications := v1.Group("/notifications")
	notifications.GET("", s.handlers.Notification.List)
	notifications.GET("/unread-count", s.handlers.Notification.UnreadCount)
	notifications.GET("/stream", s.handlers.Notification.Stream)
	notifications.POST("/read-all", s.handlers.Notification.MarkAllRead)
	notifications.POST("/:id/read", s.handlers.Notification.MarkRead)
}

func (s *Server) rateLimiter() echo.MiddlewareFunc {
	limit := s.config.Server.HTTP.RateLimit
	if limit.RPS <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limit.RPS),
			Burst:     limit.Burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorBody{Error: "Client not identified", Code: "FORBIDDEN"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.logger.Warn("Checkout rate limit exceeded",
				zap.String("ip", identifier),
				zap.String("path", c.Path()))
			return echo.NewHTTPError(http.StatusTooManyRequests, apperrors.ErrorBody{Error: "Too many requests", Code: "TOO_MANY_REQUESTS"})
		},
	})
}

type healthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

func (s *Server) healthHandler(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:  "healthy",
		Service: s.config.Service.Name,
		Version: s.config.Service.Version,
		Checks:  make(map[string]string, len(s.health)),
	}
	status := http.StatusOK
	for name, check := range s.health {
		if err := check(ctx); err != nil {
			s.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	return c.JSON(status, resp)
}
