package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	domainErrors "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/errors"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
)

// Notifier is the best-effort notification entry point used by other use cases
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message string, typ entity.NotificationType)
}

const notifyTimeout = 5 * time.Second

// NotificationService persists in-app notifications and pushes them to live
// subscribers
type NotificationService struct {
	repo    domainRepo.NotificationRepository
	broker  provider.NotificationBroker
	metrics MetricsRecorder
	logger  *zap.Logger
}

func NewNotificationService(
	repo domainRepo.NotificationRepository,
	broker provider.NotificationBroker,
	m MetricsRecorder,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		repo:    repo,
		broker:  broker,
		metrics: m,
		logger:  logger,
	}
}

// Notify stores the notification and then publishes it. Failures are logged
// and never reach the caller. The row is committed before the push so a
// subscriber reading back after an event always finds it.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, title, message string, typ entity.NotificationType) {
	if userID == uuid.Nil {
		s.logger.Warn("NotificationService: Skipping notification without recipient", zap.String("title", title))
		return
	}
	if !typ.IsValid() {
		typ = entity.NotificationTypeSystem
	}

	// The caller's request may already be finishing; the side effect outlives it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	n := &model.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.count("persist", "failed")
		s.logger.Error("NotificationService: Failed to persist notification",
			zap.String("user_id", userID.String()),
			zap.String("title", title),
			zap.String("step", "persist"),
			zap.String("status", "failed"),
			zap.Error(err))
		return
	}
	s.count("persist", "ok")

	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, n.Event()); err != nil {
		s.count("publish", "failed")
		s.logger.Warn("NotificationService: Failed to publish notification",
			zap.String("user_id", userID.String()),
			zap.String("notification_id", n.ID.String()),
			zap.String("step", "publish"),
			zap.String("status", "failed"),
			zap.Error(err))
		return
	}
	s.count("publish", "ok")
}

// Subscribe attaches onEvent to userID's live notifications. The caller owns
// the returned handle.
func (s *NotificationService) Subscribe(userID uuid.UUID, onEvent func(entity.NotificationEvent)) (provider.Unsubscribe, error) {
	if s.broker == nil {
		return nil, domainErrors.NewUpstreamUnavailableError("notification_stream", errors.New("no realtime broker"))
	}
	return s.broker.Subscribe(userID, onEvent)
}

func (s *NotificationService) List(ctx context.Context, actor entity.Actor, unreadOnly bool, page entity.PaginationParams) (*entity.Page[model.Notification], error) {
	page.Validate()

	items, total, err := s.repo.ListByUser(ctx, actor.UserID, unreadOnly, page)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Notification{}
	}

	return &entity.Page[model.Notification]{
		Data:       items,
		Pagination: entity.NewPaginationMeta(page.Page, page.PageSize, total),
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor entity.Actor) (int64, error) {
	return s.repo.CountUnread(ctx, actor.UserID)
}

// MarkRead flips is_read on one of the actor's notifications. Someone else's
// id is reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	ok, err := s.repo.MarkRead(ctx, actor.UserID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domainErrors.NewNotFoundError("notification", id.String())
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor entity.Actor) (int64, error) {
	return s.repo.MarkAllRead(ctx, actor.UserID)
}

func (s *NotificationService) count(stage, result string) {
	if s.metrics != nil {
		s.metrics.NotificationDispatch(stage, result)
	}
}
