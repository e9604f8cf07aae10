package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/middleware/auth"
)

// PaymentUsecase is the merchant side of the payment lifecycle
type PaymentUsecase interface {
	Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*model.Payment, error)
	List(ctx context.Context, actor entity.Actor, status string, page entity.PaginationParams) (*entity.Page[model.Payment], error)
	Verify(ctx context.Context, actor entity.Actor, id uuid.UUID, decision string) (*model.Payment, error)
	ProofURL(ctx context.Context, actor entity.Actor, id uuid.UUID) (string, error)
}

type PaymentHandler struct {
	usecase PaymentUsecase
	logger  *zap.Logger
}

func NewPaymentHandler(usecase PaymentUsecase, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		usecase: usecase,
		logger:  logger,
	}
}

type verifyRequest struct {
	Decision string `json:"decision" validate:"required,oneof=completed failed"`
}

// ListPayments handles GET /api/v1/payments?status=&page=&page_size=
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}

	page, err := bindPage(c)
	if err != nil {
		return err
	}

	result, err := h.usecase.List(c.Request().Context(), actor, c.QueryParam("status"), page)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetPayment handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	payment, err := h.usecase.Get(c.Request().Context(), actor, id)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, payment)
}

// VerifyPayment handles POST /api/v1/payments/:id/verify
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	payment, err := h.usecase.Verify(c.Request().Context(), actor, id, req.Decision)
	if err != nil {
		h.logger.Info("Payment verification rejected",
			zap.String("payment_id", id.String()),
			zap.String("user_id", actor.UserID.String()),
			zap.Error(err))
		return handleError(err)
	}
	return c.JSON(http.StatusOK, payment)
}

// GetProof handles GET /api/v1/payments/:id/proof by redirecting to a signed URL
func (h *PaymentHandler) GetProof(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	url, err := h.usecase.ProofURL(c.Request().Context(), actor, id)
	if err != nil {
		return handleError(err)
	}
	return c.Redirect(http.StatusFound, url)
}

func bindPage(c echo.Context) (entity.PaginationParams, error) {
	var page entity.PaginationParams
	err := echo.QueryParamsBinder(c).
		Int("page", &page.Page).
		Int("page_size", &page.PageSize).
		BindError()
	if err != nil {
		return page, badRequest("page and page_size must be integers")
	}
	return page, nil
}
