package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	domainErrors "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/errors"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/metrics"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/usecase"
)

func TestNotificationService_Notify(t *testing.T) {
	userID := uuid.New()

	t.Run("persists before publishing", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		broker := new(MockNotificationBroker)
		m := metrics.New()
		service := usecase.NewNotificationService(repo, broker, m, zap.NewNop())

		var order []string
		repo.On("Create", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
			return n.UserID == userID && n.Title == "Payment verified" && n.Type == entity.NotificationTypePayment
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.Notification).ID = uuid.New()
			order = append(order, "persist")
		}).Return(nil)
		broker.On("Publish", mock.Anything, mock.MatchedBy(func(e entity.NotificationEvent) bool {
			return e.UserID == userID && e.ID != uuid.Nil
		})).Run(func(mock.Arguments) {
			order = append(order, "publish")
		}).Return(nil)

		service.Notify(context.Background(), userID, "Payment verified", "ok", entity.NotificationTypePayment)

		assert.Equal(t, []string{"persist", "publish"}, order)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.NotificationsDispatch.WithLabelValues("publish", "ok")))
	})

	t.Run("persist failure skips publish", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		broker := new(MockNotificationBroker)
		service := usecase.NewNotificationService(repo, broker, nil, zap.NewNop())
		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

		service.Notify(context.Background(), userID, "t", "m", entity.NotificationTypeSystem)

		broker.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("publish failure is swallowed", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		broker := new(MockNotificationBroker)
		service := usecase.NewNotificationService(repo, broker, nil, zap.NewNop())
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		broker.On("Publish", mock.Anything, mock.Anything).Return(errors.New("redis gone"))

		assert.NotPanics(t, func() {
			service.Notify(context.Background(), userID, "t", "m", entity.NotificationTypeUser)
		})
	})

	t.Run("cancelled caller still persists", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		service := usecase.NewNotificationService(repo, nil, nil, zap.NewNop())
		repo.On("Create", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).Return(nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		service.Notify(ctx, userID, "t", "m", entity.NotificationTypeUser)

		repo.AssertExpectations(t)
	})

	t.Run("unknown type becomes system", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		service := usecase.NewNotificationService(repo, nil, nil, zap.NewNop())
		repo.On("Create", mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
			return n.Type == entity.NotificationTypeSystem
		})).Return(nil)

		service.Notify(context.Background(), userID, "t", "m", "weird")

		repo.AssertExpectations(t)
	})

	t.Run("no recipient is dropped", func(t *testing.T) {
		repo := new(MockNotificationRepository)
		service := usecase.NewNotificationService(repo, nil, nil, zap.NewNop())

		service.Notify(context.Background(), uuid.Nil, "t", "m", entity.NotificationTypeUser)

		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestNotificationService_Subscribe(t *testing.T) {
	userID := uuid.New()

	t.Run("delegates to broker", func(t *testing.T) {
		broker := new(MockNotificationBroker)
		called := false
		broker.On("Subscribe", userID, mock.Anything).Return(provider.Unsubscribe(func() { called = true }), nil)
		service := usecase.NewNotificationService(new(MockNotificationRepository), broker, nil, zap.NewNop())

		unsubscribe, err := service.Subscribe(userID, func(entity.NotificationEvent) {})

		require.NoError(t, err)
		unsubscribe()
		assert.True(t, called)
	})

	t.Run("without broker", func(t *testing.T) {
		service := usecase.NewNotificationService(new(MockNotificationRepository), nil, nil, zap.NewNop())

		_, err := service.Subscribe(userID, func(entity.NotificationEvent) {})

		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeUpstreamUnavailable))
	})
}

func TestNotificationService_MarkRead(t *testing.T) {
	ctx := context.Background()
	actor := entity.Actor{UserID: uuid.New()}
	id := uuid.New()

	tests := []struct {
		name     string
		found    bool
		err      error
		wantType string
		wantErr  bool
	}{
		{name: "own notification", found: true},
		{name: "someone else's notification", found: false, wantType: domainErrors.ErrTypeNotFound, wantErr: true},
		{name: "storage error", err: errors.New("db down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockNotificationRepository)
			repo.On("MarkRead", ctx, actor.UserID, id).Return(tt.found, tt.err)
			service := usecase.NewNotificationService(repo, nil, nil, zap.NewNop())

			err := service.MarkRead(ctx, actor, id)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			if tt.wantType != "" {
				assert.True(t, domainErrors.IsType(err, tt.wantType))
			}
		})
	}
}

func TestNotificationService_List(t *testing.T) {
	ctx := context.Background()
	actor := entity.Actor{UserID: uuid.New()}
	repo := new(MockNotificationRepository)
	repo.On("ListByUser", ctx, actor.UserID, true, entity.PaginationParams{Page: 2, PageSize: 10}).
		Return(nil, int64(11), nil)
	service := usecase.NewNotificationService(repo, nil, nil, zap.NewNop())

	page, err := service.List(ctx, actor, true, entity.PaginationParams{Page: 2, PageSize: 10})

	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}
