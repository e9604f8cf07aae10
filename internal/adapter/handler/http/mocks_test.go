package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	handlers "github.com/ptiporki19/pxv-pay-app-sub003/internal/adapter/handler/http"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/middleware/auth"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/usecase"
	"github.com/ptiporki19/pxv-pay-app-sub003/pkg/logger"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = handlers.NewRequestValidator()
	logger.WithEchoLogger(e, zap.NewNop())
	return e
}

// serve runs req through e, optionally as an authenticated actor.
func serve(e *echo.Echo, req *http.Request, actor *entity.Actor) *httptest.ResponseRecorder {
	if actor != nil {
		req = req.WithContext(auth.WithActor(req.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type MockCheckoutUsecase struct {
	mock.Mock
}

func (m *MockCheckoutUsecase) ResolveLink(ctx context.Context, slug string) (*entity.CheckoutLinkView, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CheckoutLinkView), args.Error(1)
}

func (m *MockCheckoutUsecase) ValidateLink(ctx context.Context, slug string) (*entity.LinkValidation, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LinkValidation), args.Error(1)
}

func (m *MockCheckoutUsecase) Countries(ctx context.Context, slug string) ([]entity.Country, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Country), args.Error(1)
}

func (m *MockCheckoutUsecase) Methods(ctx context.Context, slug, country string) ([]entity.CheckoutMethodView, error) {
	args := m.Called(ctx, slug, country)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CheckoutMethodView), args.Error(1)
}

func (m *MockCheckoutUsecase) DetectCountry(ctx context.Context, slug, ip string) (string, error) {
	args := m.Called(ctx, slug, ip)
	return args.String(0), args.Error(1)
}

func (m *MockCheckoutUsecase) SubmitProof(ctx context.Context, slug string, in usecase.SubmitProofInput) (*model.Payment, error) {
	args := m.Called(ctx, slug, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

type MockPaymentUsecase struct {
	mock.Mock
}

func (m *MockPaymentUsecase) Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentUsecase) List(ctx context.Context, actor entity.Actor, status string, page entity.PaginationParams) (*entity.Page[model.Payment], error) {
	args := m.Called(ctx, actor, status, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[model.Payment]), args.Error(1)
}

func (m *MockPaymentUsecase) Verify(ctx context.Context, actor entity.Actor, id uuid.UUID, decision string) (*model.Payment, error) {
	args := m.Called(ctx, actor, id, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentUsecase) ProofURL(ctx context.Context, actor entity.Actor, id uuid.UUID) (string, error) {
	args := m.Called(ctx, actor, id)
	return args.String(0), args.Error(1)
}

type MockNotificationUsecase struct {
	mock.Mock
}

func (m *MockNotificationUsecase) List(ctx context.Context, actor entity.Actor, unreadOnly bool, page entity.PaginationParams) (*entity.Page[model.Notification], error) {
	args := m.Called(ctx, actor, unreadOnly, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[model.Notification]), args.Error(1)
}

func (m *MockNotificationUsecase) UnreadCount(ctx context.Context, actor entity.Actor) (int64, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationUsecase) MarkRead(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockNotificationUsecase) MarkAllRead(ctx context.Context, actor entity.Actor) (int64, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationUsecase) Subscribe(userID uuid.UUID, onEvent func(entity.NotificationEvent)) (provider.Unsubscribe, error) {
	args := m.Called(userID, onEvent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(provider.Unsubscribe), args.Error(1)
}

type MockCheckoutLinkUsecase struct {
	mock.Mock
}

func (m *MockCheckoutLinkUsecase) Create(ctx context.Context, actor entity.Actor, in usecase.CheckoutLinkInput) (*model.CheckoutLink, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutLink), args.Error(1)
}

func (m *MockCheckoutLinkUsecase) Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*model.CheckoutLink, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutLink), args.Error(1)
}

func (m *MockCheckoutLinkUsecase) List(ctx context.Context, actor entity.Actor, page entity.PaginationParams) (*entity.Page[model.CheckoutLink], error) {
	args := m.Called(ctx, actor, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[model.CheckoutLink]), args.Error(1)
}

func (m *MockCheckoutLinkUsecase) Update(ctx context.Context, actor entity.Actor, id uuid.UUID, in usecase.CheckoutLinkInput) (*model.CheckoutLink, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutLink), args.Error(1)
}

func (m *MockCheckoutLinkUsecase) SetStatus(ctx context.Context, actor entity.Actor, id uuid.UUID, status string) (*model.CheckoutLink, error) {
	args := m.Called(ctx, actor, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutLink), args.Error(1)
}

func (m *MockCheckoutLinkUsecase) Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockPaymentMethodUsecase struct {
	mock.Mock
}

func (m *MockPaymentMethodUsecase) Create(ctx context.Context, actor entity.Actor, in usecase.PaymentMethodInput) (*model.PaymentMethod, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodUsecase) Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*model.PaymentMethod, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodUsecase) List(ctx context.Context, actor entity.Actor) ([]model.PaymentMethod, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]model.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodUsecase) Update(ctx context.Context, actor entity.Actor, id uuid.UUID, in usecase.PaymentMethodInput) (*model.PaymentMethod, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodUsecase) Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockDashboardUsecase struct {
	mock.Mock
}

func (m *MockDashboardUsecase) Stats(ctx context.Context, actor entity.Actor) (*entity.DashboardStats, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DashboardStats), args.Error(1)
}
