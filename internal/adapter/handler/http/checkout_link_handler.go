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

type CheckoutLinkUsecase interface {
	Create(ctx context.Context, actor entity.Actor, in usecase.CheckoutLinkInput) (*model.CheckoutLink, error)
	Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*model.CheckoutLink, error)
	List(ctx context.Context, actor entity.Actor, page entity.PaginationParams) (*entity.Page[model.CheckoutLink], error)
	Update(ctx context.Context, actor entity.Actor, id uuid.UUID, in usecase.CheckoutLinkInput) (*model.CheckoutLink, error)
	SetStatus(ctx context.Context, actor entity.Actor, id uuid.UUID, status string) (*model.CheckoutLink, error)
	Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error
}

// CheckoutLinkHandler serves merchant CRUD for checkout links
type CheckoutLinkHandler struct {
	usecase CheckoutLinkUsecase
	logger  *zap.Logger
}

func NewCheckoutLinkHandler(usecase CheckoutLinkUsecase, logger *zap.Logger) *CheckoutLinkHandler {
	return &CheckoutLinkHandler{usecase: usecase, logger: logger}
}

type linkStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *CheckoutLinkHandler) List(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}
	page, err := bindPage(c)
	if err != nil {
		return err
	}

	result, err := h.usecase.List(c.Request().Context(), actor, page)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutLinkHandler) Create(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}

	var in usecase.CheckoutLinkInput
	if err := c.Bind(&in); err != nil {
		return badRequest("invalid request body")
	}

	link, err := h.usecase.Create(c.Request().Context(), actor, in)
	if err != nil {
		return handleError(err)
	}

	h.logger.Info("Checkout link created",
		zap.String("user_id", actor.UserID.String()),
		zap.String("slug", link.Slug))
	return c.JSON(http.StatusCreated, link)
}

func (h *CheckoutLinkHandler) Get(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	link, err := h.usecase.Get(c.Request().Context(), actor, id)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, link)
}

func (h *CheckoutLinkHandler) Update(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var in usecase.CheckoutLinkInput
	if err := c.Bind(&in); err != nil {
		return badRequest("invalid request body")
	}

	link, err := h.usecase.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, link)
}

// SetStatus handles POST /api/v1/checkout-links/:id/status
func (h *CheckoutLinkHandler) SetStatus(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req linkStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	link, err := h.usecase.SetStatus(c.Request().Context(), actor, id, req.Status)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, link)
}

func (h *CheckoutLinkHandler) Delete(c echo.Context) error {
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
