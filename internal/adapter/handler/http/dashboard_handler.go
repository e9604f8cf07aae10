package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/middleware/auth"
)

type DashboardUsecase interface {
	Stats(ctx context.Context, actor entity.Actor) (*entity.DashboardStats, error)
}

type DashboardHandler struct {
	usecase DashboardUsecase
	logger  *zap.Logger
}

func NewDashboardHandler(usecase DashboardUsecase, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{usecase: usecase, logger: logger}
}

// Stats handles GET /api/v1/dashboard/stats
func (h *DashboardHandler) Stats(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}

	stats, err := h.usecase.Stats(c.Request().Context(), actor)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
