package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	domainErrors "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/errors"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/usecase"
)

func awaitingPayment(merchantID uuid.UUID) *model.Payment {
	return &model.Payment{
		ID:              uuid.New(),
		MerchantID:      merchantID,
		CheckoutLinkID:  uuid.New(),
		Amount:          decimal.NewFromInt(5000),
		Currency:        "XAF",
		Status:          entity.PaymentStatusPendingVerification,
		CustomerName:    "Ada",
		CustomerEmail:   "ada@example.com",
		Country:         "CM",
		PaymentProofURL: "s3://proofs/proofs/m/p.png",
		ProofObjectKey:  "proofs/m/p.png",
	}
}

type paymentFixture struct {
	payments *MockPaymentRepository
	storage  *MockProofStorage
	notifier *MockNotifier
	mailer   *MockPaymentMailer
	events   *MockEventPublisher
	service  *usecase.PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		payments: new(MockPaymentRepository),
		storage:  new(MockProofStorage),
		notifier: new(MockNotifier),
		mailer:   new(MockPaymentMailer),
		events:   new(MockEventPublisher),
	}
	f.service = usecase.NewPaymentService(f.payments, ownerOnly{}, f.storage, f.notifier, f.mailer, f.events, nil, zap.NewNop())
	return f
}

func (f *paymentFixture) expectSideEffects(merchantID uuid.UUID, title string) {
	f.notifier.On("Notify", mock.Anything, merchantID, title, mock.Anything, entity.NotificationTypePayment).Return()
	f.mailer.On("SendPaymentDecision", mock.Anything, mock.MatchedBy(func(p *model.Payment) bool {
		return p.CustomerEmail == "ada@example.com" && p.Status.IsTerminal()
	})).Return(nil)
	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(e *provider.PaymentEvent) bool {
		return e.Type == provider.EventPaymentVerified
	})).Return(nil)
}

func TestPaymentService_Verify(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()
	merchant := entity.Actor{UserID: merchantID}

	decisions := []struct {
		decision string
		want     entity.PaymentStatus
		title    string
	}{
		{decision: "completed", want: entity.PaymentStatusCompleted, title: "Payment verified"},
		{decision: "failed", want: entity.PaymentStatusFailed, title: "Payment rejected"},
	}

	for _, tt := range decisions {
		t.Run("owner decides "+tt.decision, func(t *testing.T) {
			f := newPaymentFixture()
			payment := awaitingPayment(merchantID)
			f.payments.On("GetByID", ctx, payment.ID).Return(payment, nil)
			f.payments.On("CompareAndSwapStatus", ctx, mock.MatchedBy(func(c domainRepo.StatusChange) bool {
				return c.PaymentID == payment.ID &&
					c.From == entity.PaymentStatusPendingVerification &&
					c.To == tt.want &&
					c.ActorID == merchantID
			})).Return(true, nil)
			f.expectSideEffects(merchantID, tt.title)

			result, err := f.service.Verify(ctx, merchant, payment.ID, tt.decision)

			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Status)
			require.NotNil(t, result.VerifiedBy)
			assert.Equal(t, merchantID, *result.VerifiedBy)
			assert.NotNil(t, result.VerifiedAt)
			f.service.Wait()
			f.payments.AssertExpectations(t)
			f.notifier.AssertExpectations(t)
			f.mailer.AssertExpectations(t)
			f.events.AssertExpectations(t)
		})
	}

	t.Run("second verification is already finalized", func(t *testing.T) {
		f := newPaymentFixture()
		payment := awaitingPayment(merchantID)
		f.payments.On("GetByID", ctx, payment.ID).Return(payment, nil).Once()
		f.payments.On("CompareAndSwapStatus", ctx, mock.Anything).Return(true, nil).Once()
		f.expectSideEffects(merchantID, "Payment verified")

		_, err := f.service.Verify(ctx, merchant, payment.ID, "completed")
		require.NoError(t, err)

		finalized := *payment
		finalized.Status = entity.PaymentStatusCompleted
		f.payments.On("GetByID", ctx, payment.ID).Return(&finalized, nil).Once()

		_, err = f.service.Verify(ctx, merchant, payment.ID, "failed")

		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeAlreadyFinalized))
		f.payments.AssertNumberOfCalls(t, "CompareAndSwapStatus", 1)
		f.notifier.AssertNumberOfCalls(t, "Notify", 1)
	})

	t.Run("lost update reports the committed status", func(t *testing.T) {
		f := newPaymentFixture()
		payment := awaitingPayment(merchantID)
		committed := *payment
		committed.Status = entity.PaymentStatusFailed
		f.payments.On("GetByID", ctx, payment.ID).Return(payment, nil).Once()
		f.payments.On("CompareAndSwapStatus", ctx, mock.Anything).Return(false, nil)
		f.payments.On("GetByID", ctx, payment.ID).Return(&committed, nil).Once()

		_, err := f.service.Verify(ctx, merchant, payment.ID, "completed")

		var perr *domainErrors.PaymentError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, domainErrors.ErrTypeAlreadyFinalized, perr.Type)
		assert.Contains(t, perr.Message, "failed")
		f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("another merchant is forbidden", func(t *testing.T) {
		f := newPaymentFixture()
		payment := awaitingPayment(merchantID)
		f.payments.On("GetByID", ctx, payment.ID).Return(payment, nil)

		_, err := f.service.Verify(ctx, entity.Actor{UserID: uuid.New()}, payment.ID, "completed")

		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeForbidden))
		f.payments.AssertNotCalled(t, "CompareAndSwapStatus", mock.Anything, mock.Anything)
	})

	t.Run("unknown decision", func(t *testing.T) {
		f := newPaymentFixture()

		_, err := f.service.Verify(ctx, merchant, uuid.New(), "pending")

		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeInvalidInput))
		f.payments.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown payment", func(t *testing.T) {
		f := newPaymentFixture()
		id := uuid.New()
		f.payments.On("GetByID", ctx, id).Return(nil, domainRepo.ErrNotFound)

		_, err := f.service.Verify(ctx, merchant, id, "completed")

		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeNotFound))
	})

	t.Run("side effect failures do not fail verification", func(t *testing.T) {
		f := newPaymentFixture()
		payment := awaitingPayment(merchantID)
		f.payments.On("GetByID", ctx, payment.ID).Return(payment, nil)
		f.payments.On("CompareAndSwapStatus", ctx, mock.Anything).Return(true, nil)
		f.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()
		f.mailer.On("SendPaymentDecision", mock.Anything, mock.Anything).Return(errors.New("smtp: 421"))
		f.events.On("Publish", mock.Anything, mock.Anything).Return(errors.New("sns: throttled"))

		result, err := f.service.Verify(ctx, merchant, payment.ID, "completed")
		f.service.Wait()

		require.NoError(t, err)
		assert.Equal(t, entity.PaymentStatusCompleted, result.Status)
		f.mailer.AssertExpectations(t)
	})

	t.Run("slow customer email does not hold the response", func(t *testing.T) {
		f := newPaymentFixture()
		payment := awaitingPayment(merchantID)
		release := make(chan struct{})
		var mailDeadline time.Time
		f.payments.On("GetByID", ctx, payment.ID).Return(payment, nil)
		f.payments.On("CompareAndSwapStatus", ctx, mock.Anything).Return(true, nil)
		f.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()
		f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)
		f.mailer.On("SendPaymentDecision", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			mailDeadline, _ = args.Get(0).(context.Context).Deadline()
			<-release
		}).Return(nil)

		reqCtx, cancelReq := context.WithCancel(ctx)
		result, err := f.service.Verify(reqCtx, merchant, payment.ID, "completed")
		cancelReq()

		require.NoError(t, err)
		assert.Equal(t, entity.PaymentStatusCompleted, result.Status)

		close(release)
		f.service.Wait()
		f.mailer.AssertNumberOfCalls(t, "SendPaymentDecision", 1)
		assert.False(t, mailDeadline.IsZero())
	})
}

// memoryPayments is a concurrency-safe PaymentRepository holding one row.
type memoryPayments struct {
	MockPaymentRepository
	mu      sync.Mutex
	payment model.Payment
	audits  int
}

func (r *memoryPayments) GetByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != r.payment.ID {
		return nil, domainRepo.ErrNotFound
	}
	p := r.payment
	return &p, nil
}

func (r *memoryPayments) CompareAndSwapStatus(_ context.Context, change domainRepo.StatusChange) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.payment.Status != change.From {
		return false, nil
	}
	r.payment.Status = change.To
	r.audits++
	return true, nil
}

func TestPaymentService_ConcurrentVerify(t *testing.T) {
	merchantID := uuid.New()
	repo := &memoryPayments{payment: *awaitingPayment(merchantID)}
	paymentID := repo.payment.ID
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()
	service := usecase.NewPaymentService(repo, ownerOnly{}, nil, notifier, nil, nil, nil, zap.NewNop())

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   int
		finalized int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		decision := "completed"
		if i%2 == 1 {
			decision = "failed"
		}
		wg.Add(1)
		go func(decision string) {
			defer wg.Done()
			<-start
			_, err := service.Verify(context.Background(), entity.Actor{UserID: merchantID}, paymentID, decision)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case domainErrors.IsType(err, domainErrors.ErrTypeAlreadyFinalized):
				finalized++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(decision)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, workers-1, finalized)
	assert.Equal(t, 1, repo.audits)
	assert.True(t, repo.payment.Status.IsTerminal())
	notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestPaymentService_Get(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()
	payment := awaitingPayment(merchantID)

	tests := []struct {
		name     string
		actor    entity.Actor
		wantType string
	}{
		{name: "owner reads", actor: entity.Actor{UserID: merchantID}},
		{name: "other merchant sees not found", actor: entity.Actor{UserID: uuid.New()}, wantType: domainErrors.ErrTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			f.payments.On("GetByID", ctx, payment.ID).Return(payment, nil)

			got, err := f.service.Get(ctx, tt.actor, payment.ID)

			if tt.wantType != "" {
				assert.Nil(t, got)
				assert.True(t, domainErrors.IsType(err, tt.wantType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, payment.ID, got.ID)
		})
	}
}

func TestPaymentService_List(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()

	t.Run("filters by status and normalises paging", func(t *testing.T) {
		f := newPaymentFixture()
		f.payments.On("List", ctx, domainRepo.PaymentFilter{
			MerchantID: merchantID,
			Status:     entity.PaymentStatusPendingVerification,
			Pagination: entity.PaginationParams{Page: 1, PageSize: entity.MaxPageSize},
		}).Return([]model.Payment{*awaitingPayment(merchantID)}, int64(1), nil)

		page, err := f.service.List(ctx, entity.Actor{UserID: merchantID}, "pending_verification",
			entity.PaginationParams{Page: 0, PageSize: 500})

		require.NoError(t, err)
		assert.Len(t, page.Data, 1)
		assert.Equal(t, 1, page.Pagination.TotalPages)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newPaymentFixture()

		_, err := f.service.List(ctx, entity.Actor{UserID: merchantID}, "paid", entity.PaginationParams{})

		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeInvalidInput))
	})
}

func TestPaymentService_ProofURL(t *testing.T) {
	ctx := context.Background()
	merchantID := uuid.New()
	merchant := entity.Actor{UserID: merchantID}

	t.Run("presigns the stored key", func(t *testing.T) {
		f := newPaymentFixture()
		payment := awaitingPayment(merchantID)
		f.payments.On("GetByID", ctx, payment.ID).Return(payment, nil)
		f.storage.On("PresignGet", ctx, "proofs/m/p.png").Return("https://s3.example.com/signed", nil)

		url, err := f.service.ProofURL(ctx, merchant, payment.ID)

		require.NoError(t, err)
		assert.Equal(t, "https://s3.example.com/signed", url)
	})

	t.Run("payment without proof", func(t *testing.T) {
		f := newPaymentFixture()
		payment := awaitingPayment(merchantID)
		payment.ProofObjectKey = ""
		f.payments.On("GetByID", ctx, payment.ID).Return(payment, nil)

		_, err := f.service.ProofURL(ctx, merchant, payment.ID)

		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeNotFound))
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newPaymentFixture()
		payment := awaitingPayment(merchantID)
		f.payments.On("GetByID", ctx, payment.ID).Return(payment, nil)
		f.storage.On("PresignGet", ctx, mock.Anything).Return("", errors.New("expired credentials"))

		_, err := f.service.ProofURL(ctx, merchant, payment.ID)

		assert.True(t, domainErrors.IsType(err, domainErrors.ErrTypeUpstreamUnavailable))
	})
}
