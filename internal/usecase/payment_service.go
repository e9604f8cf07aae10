package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	domainErrors "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/errors"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
)

// PaymentService is the merchant side of the payment lifecycle
type PaymentService struct {
	payments domainRepo.PaymentRepository
	authz    Authorizer
	storage  provider.ProofStorage
	notifier Notifier
	mailer   provider.PaymentMailer
	events   provider.EventPublisher
	metrics  MetricsRecorder
	now      func() time.Time
	logger   *zap.Logger

	mailWG sync.WaitGroup
}

const customerMailTimeout = 15 * time.Second

// NewPaymentService creates the service. storage, mailer, events and m may be nil.
func NewPaymentService(
	payments domainRepo.PaymentRepository,
	authz Authorizer,
	storage provider.ProofStorage,
	notifier Notifier,
	mailer provider.PaymentMailer,
	events provider.EventPublisher,
	m MetricsRecorder,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		authz:    authz,
		storage:  storage,
		notifier: notifier,
		mailer:   mailer,
		events:   events,
		metrics:  m,
		now:      time.Now,
		logger:   logger,
	}
}

func paymentResource(p *model.Payment) entity.Resource {
	return entity.Resource{
		Type:    entity.ResourcePayment,
		ID:      p.ID.String(),
		OwnerID: p.MerchantID,
	}
}

// Get returns a payment the actor may read. Payments of other merchants are
// reported as not found.
func (s *PaymentService) Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*model.Payment, error) {
	payment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authz.CurrentUserCan(ctx, actor, entity.ActionRead, paymentResource(payment)) {
		return nil, domainErrors.NewNotFoundError("payment", id.String())
	}
	return payment, nil
}

// List returns the actor's payments, newest first, optionally filtered by status.
func (s *PaymentService) List(ctx context.Context, actor entity.Actor, status string, page entity.PaginationParams) (*entity.Page[model.Payment], error) {
	st, err := entity.ParsePaymentStatus(status)
	if err != nil {
		return nil, domainErrors.NewInvalidInputError("payment", err.Error(), nil)
	}
	page.Validate()

	items, total, err := s.payments.List(ctx, domainRepo.PaymentFilter{
		MerchantID: actor.UserID,
		Status:     st,
		Pagination: page,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Payment{}
	}

	return &entity.Page[model.Payment]{
		Data:       items,
		Pagination: entity.NewPaginationMeta(page.Page, page.PageSize, total),
	}, nil
}

// ProofURL returns a short-lived download URL for the payment's proof.
func (s *PaymentService) ProofURL(ctx context.Context, actor entity.Actor, id uuid.UUID) (string, error) {
	payment, err := s.Get(ctx, actor, id)
	if err != nil {
		return "", err
	}
	if !payment.HasProof() {
		return "", domainErrors.NewNotFoundError("payment_proof", id.String())
	}
	if s.storage == nil {
		return "", domainErrors.NewUpstreamUnavailableError("proof_storage", errors.New("object storage not configured"))
	}

	url, err := s.storage.PresignGet(ctx, payment.ProofObjectKey)
	if err != nil {
		return "", domainErrors.NewUpstreamUnavailableError("proof_storage", err)
	}
	return url, nil
}

// Verify moves a payment to completed or failed. The status change is a
// compare-and-swap on the current status, so of two concurrent decisions
// exactly one wins and the other gets AlreadyFinalized.
func (s *PaymentService) Verify(ctx context.Context, actor entity.Actor, id uuid.UUID, decision string) (*model.Payment, error) {
	startTime := time.Now()

	s.logger.Info("PaymentService: Starting verification",
		zap.String("payment_id", id.String()),
		zap.String("actor_id", actor.UserID.String()),
		zap.String("decision", decision),
		zap.String("step", "service_entry"),
		zap.String("status", "started"))

	next, err := entity.ParseDecision(decision)
	if err != nil {
		s.countVerification(decision, "invalid")
		return nil, domainErrors.NewInvalidInputError("payment", err.Error(), nil)
	}

	payment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.authz.CurrentUserCan(ctx, actor, entity.ActionVerify, paymentResource(payment)) {
		s.countVerification(decision, "forbidden")
		s.logger.Warn("PaymentService: Verification denied",
			zap.String("payment_id", id.String()),
			zap.String("actor_id", actor.UserID.String()),
			zap.String("step", "authorize"),
			zap.String("status", "denied"))
		return nil, domainErrors.NewForbiddenError("payment", id.String())
	}

	if payment.Status.IsTerminal() {
		s.countVerification(decision, "already_finalized")
		return nil, domainErrors.NewAlreadyFinalizedError(id.String(), string(payment.Status))
	}
	if !payment.Status.CanTransitionTo(next) {
		s.countVerification(decision, "invalid")
		return nil, domainErrors.NewInvalidInputError("payment",
			fmt.Sprintf("cannot move payment from %s to %s", payment.Status, next), nil)
	}

	at := s.now().UTC()
	swapped, err := s.payments.CompareAndSwapStatus(ctx, domainRepo.StatusChange{
		PaymentID: payment.ID,
		From:      payment.Status,
		To:        next,
		ActorID:   actor.UserID,
		At:        at,
	})
	if err != nil {
		s.countVerification(decision, "failed")
		return nil, err
	}
	if !swapped {
		s.countVerification(decision, "already_finalized")
		return nil, s.lostRace(ctx, payment)
	}

	payment.Status = next
	payment.VerifiedAt = &at
	verifier := actor.UserID
	payment.VerifiedBy = &verifier
	payment.UpdatedAt = at

	s.countVerification(decision, "ok")
	s.afterVerify(ctx, payment)

	s.logger.Info("PaymentService: Verification completed",
		zap.String("payment_id", id.String()),
		zap.String("payment_status", string(next)),
		zap.String("step", "service_complete"),
		zap.String("status", "success"),
		zap.Duration("duration", time.Since(startTime)))

	return payment, nil
}

// lostRace reports the status another verifier committed first.
func (s *PaymentService) lostRace(ctx context.Context, stale *model.Payment) error {
	current, err := s.payments.GetByID(ctx, stale.ID)
	if err != nil {
		s.logger.Warn("PaymentService: Re-read after lost update failed",
			zap.String("payment_id", stale.ID.String()),
			zap.Error(err))
		return domainErrors.NewAlreadyFinalizedError(stale.ID.String(), string(stale.Status))
	}
	return domainErrors.NewAlreadyFinalizedError(stale.ID.String(), string(current.Status))
}

func (s *PaymentService) afterVerify(ctx context.Context, p *model.Payment) {
	title, verb := "Payment verified", "approved"
	if p.Status == entity.PaymentStatusFailed {
		title, verb = "Payment rejected", "rejected"
	}
	s.notifier.Notify(ctx, p.MerchantID, title,
		fmt.Sprintf("You %s the payment of %s %s from %s.", verb, p.Amount.StringFixed(2), p.Currency, p.CustomerName),
		entity.NotificationTypePayment)

	if s.mailer != nil && p.CustomerEmail != "" {
		s.emailCustomer(ctx, p)
	}

	publishEvent(ctx, s.events, s.logger, provider.EventPaymentVerified, p, s.now())
}

// emailCustomer sends the decision email in the background so SMTP latency
// never holds up the verification response.
func (s *PaymentService) emailCustomer(ctx context.Context, p *model.Payment) {
	snapshot := *p
	mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), customerMailTimeout)
	logger := s.logger.With(
		zap.String("payment_id", p.ID.String()),
		zap.String("step", "email_customer"))

	s.mailWG.Add(1)
	go func() {
		defer s.mailWG.Done()
		defer cancel()
		if err := s.mailer.SendPaymentDecision(mailCtx, &snapshot); err != nil {
			logger.Warn("PaymentService: Failed to email customer", zap.Error(err))
			return
		}
		logger.Debug("PaymentService: Customer emailed")
	}()
}

// Wait blocks until background customer emails have finished.
func (s *PaymentService) Wait() {
	s.mailWG.Wait()
}

func (s *PaymentService) load(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainRepo.ErrNotFound) {
			return nil, domainErrors.NewNotFoundError("payment", id.String())
		}
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) countVerification(decision, result string) {
	if s.metrics != nil {
		s.metrics.PaymentVerification(decision, result)
	}
}
