package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	domainErrors "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/errors"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
)

// ProofPolicy limits what may be uploaded as proof of payment
type ProofPolicy struct {
	MaxSize      int64
	AllowedTypes []string
}

func (p ProofPolicy) allows(contentType string) bool {
	if len(p.AllowedTypes) == 0 {
		return true
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, t := range p.AllowedTypes {
		if strings.EqualFold(t, ct) {
			return true
		}
	}
	return false
}

// ProofFile is an uploaded proof-of-payment file
type ProofFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// SubmitProofInput is the customer's submission on a checkout page
type SubmitProofInput struct {
	CustomerName  string           `json:"customer_name" validate:"required,max=200"`
	CustomerEmail string           `json:"customer_email" validate:"omitempty,email,max=320"`
	Country       string           `json:"country" validate:"required,len=2"`
	Amount        *decimal.Decimal `json:"amount" validate:"-"`
	PaymentMethod string           `json:"payment_method" validate:"max=200"`
	Proof         *ProofFile       `json:"-" validate:"-"`
}

// CheckoutService serves the public checkout flow: link resolution and proof
// submission
type CheckoutService struct {
	links    domainRepo.CheckoutLinkRepository
	methods  domainRepo.PaymentMethodRepository
	payments domainRepo.PaymentRepository
	storage  provider.ProofStorage
	notifier Notifier
	events   provider.EventPublisher
	geo      provider.GeoLocator
	metrics  MetricsRecorder
	policy   ProofPolicy
	now      func() time.Time
	logger   *zap.Logger
}

// NewCheckoutService creates the service. storage, events, geo and m may be nil.
func NewCheckoutService(
	links domainRepo.CheckoutLinkRepository,
	methods domainRepo.PaymentMethodRepository,
	payments domainRepo.PaymentRepository,
	storage provider.ProofStorage,
	notifier Notifier,
	events provider.EventPublisher,
	geo provider.GeoLocator,
	m MetricsRecorder,
	policy ProofPolicy,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		links:    links,
		methods:  methods,
		payments: payments,
		storage:  storage,
		notifier: notifier,
		events:   events,
		geo:      geo,
		metrics:  m,
		policy:   policy,
		now:      time.Now,
		logger:   logger,
	}
}

// loadLink fetches a link by slug. Malformed slugs never reach storage.
func (s *CheckoutService) loadLink(ctx context.Context, slug string) (*model.CheckoutLink, error) {
	if !entity.ValidSlug(slug) {
		return nil, domainErrors.NewNotFoundError("checkout_link", slug)
	}
	link, err := s.links.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domainRepo.ErrNotFound) {
			return nil, domainErrors.NewNotFoundError("checkout_link", slug)
		}
		return nil, err
	}
	return link, nil
}

// ResolveLink returns the public view of a checkout link.
func (s *CheckoutService) ResolveLink(ctx context.Context, slug string) (*entity.CheckoutLinkView, error) {
	link, err := s.loadLink(ctx, slug)
	if err != nil {
		return nil, err
	}
	view := link.View(s.now())
	return &view, nil
}

func (s *CheckoutService) ValidateLink(ctx context.Context, slug string) (*entity.LinkValidation, error) {
	link, err := s.loadLink(ctx, slug)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &entity.LinkValidation{
		Valid:    true,
		IsActive: link.IsActive(now),
		Status:   link.EffectiveStatus(now),
	}, nil
}

// Countries lists the link's accepted countries with display names.
func (s *CheckoutService) Countries(ctx context.Context, slug string) ([]entity.Country, error) {
	link, err := s.loadLink(ctx, slug)
	if err != nil {
		return nil, err
	}
	return entity.CountriesFromCodes(link.ActiveCountryCodes), nil
}

// Methods lists the merchant's active payment methods for country.
func (s *CheckoutService) Methods(ctx context.Context, slug, country string) ([]entity.CheckoutMethodView, error) {
	code, ok := entity.NormalizeCountry(country)
	if !ok {
		return nil, domainErrors.NewInvalidInputError("payment_method", "country must be an ISO 3166-1 alpha-2 code", nil)
	}

	link, err := s.loadLink(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !link.AcceptsCountry(code) {
		return nil, domainErrors.NewCountryNotSupportedError(slug, code)
	}

	methods, err := s.methods.ListActiveForCountry(ctx, link.MerchantID, code)
	if err != nil {
		return nil, err
	}

	views := make([]entity.CheckoutMethodView, 0, len(methods))
	for i := range methods {
		views = append(views, methods[i].CheckoutView())
	}
	return views, nil
}

// DetectCountry guesses the customer's country from ip. It returns "" when
// unknown or when the link does not accept that country.
func (s *CheckoutService) DetectCountry(ctx context.Context, slug, ip string) (string, error) {
	link, err := s.loadLink(ctx, slug)
	if err != nil {
		return "", err
	}
	if s.geo == nil {
		return "", nil
	}

	code, err := s.geo.CountryCode(ip)
	if err != nil {
		s.logger.Warn("CheckoutService: Country detection failed", zap.Error(err))
		return "", nil
	}
	if code == "" || !link.AcceptsCountry(code) {
		return "", nil
	}
	return code, nil
}

// SubmitProof records a customer's payment against an active link. The proof
// is uploaded first under a fresh payment id; the payment and its audit entry
// are then inserted in one transaction, and the upload is removed if the
// insert does not happen.
func (s *CheckoutService) SubmitProof(ctx context.Context, slug string, in SubmitProofInput) (*model.Payment, error) {
	startTime := time.Now()

	s.logger.Info("CheckoutService: Starting proof submission",
		zap.String("slug", slug),
		zap.String("step", "service_entry"),
		zap.String("status", "started"))

	link, err := s.loadLink(ctx, slug)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !link.IsActive(now) {
		s.countSubmission(link.Currency, "rejected")
		return nil, domainErrors.NewInvalidLinkStateError(slug, string(link.EffectiveStatus(now)))
	}

	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	if err := validateInput("payment", &in); err != nil {
		s.countSubmission(link.Currency, "rejected")
		return nil, err
	}

	country, ok := entity.NormalizeCountry(in.Country)
	if !ok {
		s.countSubmission(link.Currency, "rejected")
		return nil, domainErrors.NewInvalidInputError("payment", "country must be an ISO 3166-1 alpha-2 code", nil)
	}
	if !link.AcceptsCountry(country) {
		s.countSubmission(link.Currency, "rejected")
		return nil, domainErrors.NewCountryNotSupportedError(slug, country)
	}

	amount, err := link.ResolveAmount(in.Amount)
	if err != nil {
		s.countSubmission(link.Currency, "rejected")
		return nil, err
	}
	if !amount.IsPositive() {
		s.countSubmission(link.Currency, "rejected")
		return nil, domainErrors.NewInvalidInputError("payment", "amount must be positive", nil)
	}

	if in.Proof != nil {
		if err := s.checkProof(in.Proof); err != nil {
			s.countSubmission(link.Currency, "rejected")
			return nil, err
		}
	}

	payment := &model.Payment{
		ID:             uuid.New(),
		MerchantID:     link.MerchantID,
		CheckoutLinkID: link.ID,
		Amount:         amount,
		Currency:       link.Currency,
		PaymentMethod:  in.PaymentMethod,
		Status:         entity.PaymentStatusPending,
		CustomerName:   in.CustomerName,
		CustomerEmail:  in.CustomerEmail,
		Country:        country,
	}

	var stored *provider.StoredProof
	if in.Proof != nil {
		s.logger.Debug("CheckoutService: Uploading proof",
			zap.String("payment_id", payment.ID.String()),
			zap.String("content_type", in.Proof.ContentType),
			zap.Int64("size", in.Proof.Size),
			zap.String("step", "upload_proof"))

		stored, err = s.storage.Upload(ctx, &provider.ProofUpload{
			PaymentID:   payment.ID,
			MerchantID:  payment.MerchantID,
			Filename:    in.Proof.Filename,
			ContentType: in.Proof.ContentType,
			Size:        in.Proof.Size,
			Body:        in.Proof.Body,
		})
		if err != nil {
			s.countSubmission(link.Currency, "failed")
			return nil, domainErrors.NewUpstreamUnavailableError("proof_storage", err)
		}
		payment.Status = entity.PaymentStatusPendingVerification
		payment.PaymentProofURL = stored.URL
		payment.ProofObjectKey = stored.Key
	}

	audit := &model.PaymentAuditLog{
		Action:   model.AuditActionSubmitted,
		ToStatus: payment.Status,
		Metadata: datatypes.JSONMap{
			"slug":    slug,
			"country": country,
		},
	}

	if err := s.insertPayment(ctx, payment, audit); err != nil {
		if stored != nil {
			s.discardProof(ctx, stored.Key)
		}
		s.countSubmission(link.Currency, "failed")
		s.logger.Error("CheckoutService: Payment insert failed",
			zap.String("payment_id", payment.ID.String()),
			zap.String("step", "insert_payment"),
			zap.String("status", "failed"),
			zap.Error(err))
		return nil, err
	}

	s.countSubmission(link.Currency, "accepted")
	s.afterSubmit(ctx, link, payment)

	s.logger.Info("CheckoutService: Proof submission completed",
		zap.String("payment_id", payment.ID.String()),
		zap.String("merchant_id", payment.MerchantID.String()),
		zap.String("payment_status", string(payment.Status)),
		zap.String("step", "service_complete"),
		zap.String("status", "success"),
		zap.Duration("duration", time.Since(startTime)))

	return payment, nil
}

func (s *CheckoutService) checkProof(f *ProofFile) error {
	if s.storage == nil {
		return domainErrors.NewUpstreamUnavailableError("proof_storage", errors.New("object storage not configured"))
	}
	if f.Size <= 0 {
		return domainErrors.NewInvalidInputError("payment", "proof file is empty", nil)
	}
	if s.policy.MaxSize > 0 && f.Size > s.policy.MaxSize {
		return domainErrors.NewInvalidInputError("payment",
			fmt.Sprintf("proof file exceeds %d bytes", s.policy.MaxSize), nil)
	}
	if !s.policy.allows(f.ContentType) {
		return domainErrors.NewInvalidInputError("payment",
			fmt.Sprintf("proof content type %q is not allowed", f.ContentType), nil)
	}
	return nil
}

func (s *CheckoutService) insertPayment(ctx context.Context, payment *model.Payment, audit *model.PaymentAuditLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.payments.CreateWithAudit(ctx, payment, audit)
}

// discardProof removes an orphaned upload. It runs even when ctx is cancelled.
func (s *CheckoutService) discardProof(ctx context.Context, key string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.storage.Delete(cleanupCtx, key); err != nil {
		s.logger.Error("CheckoutService: Failed to remove orphaned proof",
			zap.String("key", key),
			zap.String("step", "discard_proof"),
			zap.Error(err))
	}
}

func (s *CheckoutService) afterSubmit(ctx context.Context, link *model.CheckoutLink, payment *model.Payment) {
	s.notifier.Notify(ctx, link.MerchantID,
		"New payment submitted",
		fmt.Sprintf("%s submitted %s %s for %q. Review the proof to verify it.",
			payment.CustomerName, payment.Amount.StringFixed(2), payment.Currency, link.Title),
		entity.NotificationTypePayment)

	publishEvent(ctx, s.events, s.logger, provider.EventPaymentSubmitted, payment, s.now())
}

func (s *CheckoutService) countSubmission(currency, result string) {
	if s.metrics != nil {
		s.metrics.PaymentSubmitted(currency, result)
	}
}

// publishEvent is best-effort; failures are logged only.
func publishEvent(ctx context.Context, events provider.EventPublisher, logger *zap.Logger, eventType string, p *model.Payment, at time.Time) {
	if events == nil {
		return
	}
	err := events.Publish(context.WithoutCancel(ctx), &provider.PaymentEvent{
		Type:       eventType,
		PaymentID:  p.ID,
		MerchantID: p.MerchantID,
		LinkID:     p.CheckoutLinkID,
		Status:     p.Status,
		Amount:     p.Amount,
		Currency:   p.Currency,
		OccurredAt: at.UTC(),
	})
	if err != nil {
		logger.Warn("Failed to publish payment event",
			zap.String("type", eventType),
			zap.String("payment_id", p.ID.String()),
			zap.Error(err))
	}
}
