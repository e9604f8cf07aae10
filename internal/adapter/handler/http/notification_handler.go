package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/middleware/auth"
)

type NotificationUsecase interface {
	List(ctx context.Context, actor entity.Actor, unreadOnly bool, page entity.PaginationParams) (*entity.Page[model.Notification], error)
	UnreadCount(ctx context.Context, actor entity.Actor) (int64, error)
	MarkRead(ctx context.Context, actor entity.Actor, id uuid.UUID) error
	MarkAllRead(ctx context.Context, actor entity.Actor) (int64, error)
	Subscribe(userID uuid.UUID, onEvent func(entity.NotificationEvent)) (provider.Unsubscribe, error)
}

const streamBuffer = 32

type NotificationHandler struct {
	usecase   NotificationUsecase
	keepAlive time.Duration
	logger    *zap.Logger
}

func NewNotificationHandler(usecase NotificationUsecase, keepAlive time.Duration, logger *zap.Logger) *NotificationHandler {
	if keepAlive <= 0 {
		keepAlive = 25 * time.Second
	}
	return &NotificationHandler{
		usecase:   usecase,
		keepAlive: keepAlive,
		logger:    logger,
	}
}

// List handles GET /api/v1/notifications?unread=true
func (h *NotificationHandler) List(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}
	page, err := bindPage(c)
	if err != nil {
		return err
	}

	unreadOnly := false
	if raw := c.QueryParam("unread"); raw != "" {
		unreadOnly, err = strconv.ParseBool(raw)
		if err != nil {
			return badRequest("unread must be a boolean")
		}
	}

	result, err := h.usecase.List(c.Request().Context(), actor, unreadOnly, page)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}

	count, err := h.usecase.UnreadCount(c.Request().Context(), actor)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"unread_count": count})
}

// MarkRead handles POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.usecase.MarkRead(c.Request().Context(), actor, id); err != nil {
		return handleError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}

	updated, err := h.usecase.MarkAllRead(c.Request().Context(), actor)
	if err != nil {
		return handleError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}

// Stream handles GET /api/v1/notifications/stream as server-sent events. The
// subscription lives exactly as long as the client connection.
func (h *NotificationHandler) Stream(c echo.Context) error {
	actor, err := auth.RequireActor(c)
	if err != nil {
		return err
	}

	events := make(chan entity.NotificationEvent, streamBuffer)
	unsubscribe, err := h.usecase.Subscribe(actor.UserID, func(ev entity.NotificationEvent) {
		select {
		case events <- ev:
		default:
			h.logger.Warn("Notification stream full, dropping event",
				zap.String("user_id", actor.UserID.String()),
				zap.String("notification_id", ev.ID.String()))
		}
	})
	if err != nil {
		return handleError(err)
	}
	defer unsubscribe()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	h.logger.Debug("Notification stream opened", zap.String("user_id", actor.UserID.String()))

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("Notification stream closed", zap.String("user_id", actor.UserID.String()))
			return nil
		case ev := <-events:
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("Failed to encode notification event", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(res, "id: %s\nevent: notification\ndata: %s\n\n", ev.ID, data); err != nil {
				return nil
			}
			res.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
