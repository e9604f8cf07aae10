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
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/usecase"
)

type PaymentMethodUsecase interface {
	Create(ctx context.Context, actor entity.Actor, in usecase.PaymentMethodInput) (*model.PaymentMethod, error)
	Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*model.PaymentMethod, error)
	List(ctx context.Context, actor entity.Actor) ([]model.PaymentMethod, error)
	Update(ctx context.Context, actor entity.Actor, id uuid.UUID, in usecase.PaymentMethodInput) (*model.PaymentMethod, error)
	Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error
}

type PaymentMethodHandler struct {
	usecase PaymentMethodUsecase
	logger  *zap.Logger
}

func NewPaymentMethodHandler(usecase PaymentMethodUsecase, logger *zap.Logger) *PaymentMethodHandler {
	return &PaymentMethodHandler{usecase: usecase, logger: logger}
}

func (h *PaymentMethodHandler) List(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}

	methods, err := h.usecase.List(c.Request().Context(), actor)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"payment_methods": methods,
	})
}

func (h *PaymentMethodHandler) Create(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}

	var in usecase.PaymentMethodInput
	if err := c.Bind(&in); err != nil {
		return badRequest("invalid request body")
	}

	method, err := h.usecase.Create(c.Request().Context(), actor, in)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusCreated, method)
}

func (h *PaymentMethodHandler) Get(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	method, err := h.usecase.Get(c.Request().Context(), actor, id)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, method)
}

func (h *PaymentMethodHandler) Update(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var in usecase.PaymentMethodInput
	if err := c.Bind(&in); err != nil {
		return badRequest("invalid request body")
	}

	method, err := h.usecase.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, method)
}

func (h *PaymentMethodHandler) Delete(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.usecase.Delete(c.Request().Context(), actor, id); err != nil {
		return handleError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
