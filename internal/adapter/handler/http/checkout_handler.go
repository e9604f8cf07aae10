package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	domainErrors "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/errors"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/usecase"
)

// CheckoutUsecase is the public checkout flow
type CheckoutUsecase interface {
	ResolveLink(ctx context.Context, slug string) (*entity.CheckoutLinkView, error)
	ValidateLink(ctx context.Context, slug string) (*entity.LinkValidation, error)
	Countries(ctx context.Context, slug string) ([]entity.Country, error)
	Methods(ctx context.Context, slug, country string) ([]entity.CheckoutMethodView, error)
	DetectCountry(ctx context.Context, slug, ip string) (string, error)
	SubmitProof(ctx context.Context, slug string, in usecase.SubmitProofInput) (*model.Payment, error)
}

// CheckoutHandler serves unauthenticated checkout endpoints
type CheckoutHandler struct {
	usecase CheckoutUsecase
	logger  *zap.Logger
}

func NewCheckoutHandler(usecase CheckoutUsecase, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// submissionResponse is what the customer gets back; merchant fields are omitted.
type submissionResponse struct {
	ID        uuid.UUID            `json:"id"`
	Status    entity.PaymentStatus `json:"status"`
	Amount    decimal.Decimal      `json:"amount"`
	Currency  string               `json:"currency"`
	Country   string               `json:"country"`
	CreatedAt time.Time            `json:"created_at"`
}

// GetLink handles GET /api/checkout/:slug
func (h *CheckoutHandler) GetLink(c echo.Context) error {
	view, err := h.usecase.ResolveLink(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// Validate handles GET /api/checkout/:slug/validate
func (h *CheckoutHandler) Validate(c echo.Context) error {
	result, err := h.usecase.ValidateLink(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if domainErrors.IsType(err, domainErrors.ErrTypeNotFound) {
			return c.JSON(http.StatusNotFound, entity.LinkValidation{Valid: false})
		}
		return handleError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Countries handles GET /api/checkout/:slug/countries
func (h *CheckoutHandler) Countries(c echo.Context) error {
	countries, err := h.usecase.Countries(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"countries": countries,
	})
}

// Methods handles GET /api/checkout/:slug/methods?country=CC
func (h *CheckoutHandler) Methods(c echo.Context) error {
	country := c.QueryParam("country")
	if country == "" {
		return badRequest("country query parameter is required")
	}

	methods, err := h.usecase.Methods(c.Request().Context(), c.Param("slug"), country)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"payment_methods": methods,
	})
}

// DetectCountry handles GET /api/checkout/:slug/detect-country
func (h *CheckoutHandler) DetectCountry(c echo.Context) error {
	country, err := h.usecase.DetectCountry(c.Request().Context(), c.Param("slug"), c.RealIP())
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"country": country,
	})
}

// Submit handles POST /api/checkout/:slug/submit (multipart form)
func (h *CheckoutHandler) Submit(c echo.Context) error {
	slug := c.Param("slug")

	in := usecase.SubmitProofInput{
		CustomerName:  c.FormValue("customer_name"),
		CustomerEmail: c.FormValue("customer_email"),
		Country:       c.FormValue("country"),
		PaymentMethod: c.FormValue("payment_method"),
	}

	if raw := strings.TrimSpace(c.FormValue("amount")); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return badRequest("amount must be a decimal number")
		}
		in.Amount = &amount
	}

	fh, err := c.FormFile("proof")
	switch {
	case err == nil:
		file, err := fh.Open()
		if err != nil {
			h.logger.Error("Failed to open uploaded proof", zap.String("slug", slug), zap.Error(err))
			return badRequest("could not read proof file")
		}
		defer file.Close()

		contentType := fh.Header.Get(echo.HeaderContentType)
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		in.Proof = &usecase.ProofFile{
			Filename:    fh.Filename,
			ContentType: contentType,
			Size:        fh.Size,
			Body:        file,
		}
	case err == http.ErrMissingFile:
	default:
		return badRequest("request must be multipart/form-data")
	}

	payment, err := h.usecase.SubmitProof(c.Request().Context(), slug, in)
	if err != nil {
		return handleError(err)
	}

	return c.JSON(http.StatusCreated, submissionResponse{
		ID:        payment.ID,
		Status:    payment.Status,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Country:   payment.Country,
		CreatedAt: payment.CreatedAt,
	})
}
