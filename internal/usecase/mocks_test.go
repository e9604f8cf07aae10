package usecase_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
)

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CreateWithAudit(ctx context.Context, payment *model.Payment, audit *model.PaymentAuditLog) error {
	args := m.Called(ctx, payment, audit)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CompareAndSwapStatus(ctx context.Context, change domainRepo.StatusChange) (bool, error) {
	args := m.Called(ctx, change)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, filter domainRepo.PaymentFilter) ([]model.Payment, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) CountByStatus(ctx context.Context, merchantID uuid.UUID) ([]entity.StatusCount, error) {
	args := m.Called(ctx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.StatusCount), args.Error(1)
}

func (m *MockPaymentRepository) CompletedTotals(ctx context.Context, merchantID uuid.UUID) ([]entity.CurrencyTotal, error) {
	args := m.Called(ctx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.CurrencyTotal), args.Error(1)
}

func (m *MockPaymentRepository) DeleteByStatusBefore(ctx context.Context, status entity.PaymentStatus, before time.Time) (int64, error) {
	args := m.Called(ctx, status, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockCheckoutLinkRepository is a mock implementation of CheckoutLinkRepository
type MockCheckoutLinkRepository struct {
	mock.Mock
}

func (m *MockCheckoutLinkRepository) Create(ctx context.Context, link *model.CheckoutLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockCheckoutLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CheckoutLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutLink), args.Error(1)
}

func (m *MockCheckoutLinkRepository) GetBySlug(ctx context.Context, slug string) (*model.CheckoutLink, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutLink), args.Error(1)
}

func (m *MockCheckoutLinkRepository) Update(ctx context.Context, link *model.CheckoutLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockCheckoutLinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCheckoutLinkRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, page entity.PaginationParams) ([]model.CheckoutLink, int64, error) {
	args := m.Called(ctx, merchantID, page)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.CheckoutLink), args.Get(1).(int64), args.Error(2)
}

func (m *MockCheckoutLinkRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockCheckoutLinkRepository) CountActive(ctx context.Context, merchantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, merchantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCheckoutLinkRepository) HasPayments(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockPaymentMethodRepository is a mock implementation of PaymentMethodRepository
type MockPaymentMethodRepository struct {
	mock.Mock
}

func (m *MockPaymentMethodRepository) Create(ctx context.Context, method *model.PaymentMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

func (m *MockPaymentMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodRepository) Update(ctx context.Context, method *model.PaymentMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

func (m *MockPaymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentMethodRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]model.PaymentMethod, error) {
	args := m.Called(ctx, merchantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodRepository) ListActiveForCountry(ctx context.Context, merchantID uuid.UUID, country string) ([]model.PaymentMethod, error) {
	args := m.Called(ctx, merchantID, country)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentMethod), args.Error(1)
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, page entity.PaginationParams) ([]model.Notification, int64, error) {
	args := m.Called(ctx, userID, unreadOnly, page)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

type MockProofStorage struct {
	mock.Mock
}

func (m *MockProofStorage) Upload(ctx context.Context, req *provider.ProofUpload) (*provider.StoredProof, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.StoredProof), args.Error(1)
}

func (m *MockProofStorage) PresignGet(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockProofStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *provider.PaymentEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockPaymentMailer struct {
	mock.Mock
}

func (m *MockPaymentMailer) SendPaymentDecision(ctx context.Context, p *model.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type MockGeoLocator struct {
	mock.Mock
}

func (m *MockGeoLocator) CountryCode(ip string) (string, error) {
	args := m.Called(ip)
	return args.String(0), args.Error(1)
}

type MockPermissionChecker struct {
	mock.Mock
}

func (m *MockPermissionChecker) CheckPermission(ctx context.Context, actor entity.Actor, action entity.Action, resource entity.Resource) (bool, error) {
	args := m.Called(ctx, actor, action, resource)
	return args.Bool(0), args.Error(1)
}

type MockNotificationBroker struct {
	mock.Mock
}

func (m *MockNotificationBroker) Publish(ctx context.Context, event entity.NotificationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotificationBroker) Subscribe(userID uuid.UUID, onEvent func(entity.NotificationEvent)) (provider.Unsubscribe, error) {
	args := m.Called(userID, onEvent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(provider.Unsubscribe), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID uuid.UUID, title, message string, typ entity.NotificationType) {
	m.Called(ctx, userID, title, message, typ)
}

// ownerOnly allows an actor to act on resources it owns, except admin actions.
type ownerOnly struct{}

func (ownerOnly) CurrentUserCan(_ context.Context, actor entity.Actor, action entity.Action, resource entity.Resource) bool {
	return action != entity.ActionAdmin && resource.OwnerID == actor.UserID
}
