package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	domainErrors "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/errors"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
)

const (
	slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	slugLength   = 10
	slugAttempts = 5
)

// CheckoutLinkInput is the merchant-editable part of a checkout link
type CheckoutLinkInput struct {
	Slug                 string            `json:"slug" validate:"omitempty,max=100"`
	Title                string            `json:"title" validate:"required,max=200"`
	AmountType           entity.AmountType `json:"amount_type" validate:"required,oneof=fixed flexible"`
	Amount               *decimal.Decimal  `json:"amount,omitempty" validate:"-"`
	MinAmount            *decimal.Decimal  `json:"min_amount,omitempty" validate:"-"`
	MaxAmount            *decimal.Decimal  `json:"max_amount,omitempty" validate:"-"`
	Currency             string            `json:"currency" validate:"required,len=3"`
	ActiveCountryCodes   []string          `json:"active_country_codes" validate:"max=250"`
	Status               entity.LinkStatus `json:"status" validate:"omitempty,oneof=active inactive draft expired"`
	CheckoutPageHeading  string            `json:"checkout_page_heading" validate:"max=500"`
	PaymentReviewMessage string            `json:"payment_review_message" validate:"max=2000"`
	ExpiresAt            *time.Time        `json:"expires_at,omitempty" validate:"-"`
}

func (in *CheckoutLinkInput) apply(link *model.CheckoutLink) {
	link.Title = strings.TrimSpace(in.Title)
	link.AmountType = in.AmountType
	link.Amount = in.Amount
	link.MinAmount = in.MinAmount
	link.MaxAmount = in.MaxAmount
	link.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	link.ActiveCountryCodes = pq.StringArray(append([]string(nil), in.ActiveCountryCodes...))
	if link.ActiveCountryCodes == nil {
		link.ActiveCountryCodes = pq.StringArray{}
	}
	if in.Status != "" {
		link.Status = in.Status
	}
	link.CheckoutPageHeading = in.CheckoutPageHeading
	link.PaymentReviewMessage = in.PaymentReviewMessage
	link.ExpiresAt = in.ExpiresAt
}

// CheckoutLinkService manages a merchant's checkout links
type CheckoutLinkService struct {
	links  domainRepo.CheckoutLinkRepository
	authz  Authorizer
	newID  func() (string, error)
	logger *zap.Logger
}

func NewCheckoutLinkService(links domainRepo.CheckoutLinkRepository, authz Authorizer, logger *zap.Logger) *CheckoutLinkService {
	return &CheckoutLinkService{
		links: links,
		authz: authz,
		newID: func() (string, error) {
			return gonanoid.Generate(slugAlphabet, slugLength)
		},
		logger: logger,
	}
}

// Create stores a new link owned by actor. Without a slug one is generated.
func (s *CheckoutLinkService) Create(ctx context.Context, actor entity.Actor, in CheckoutLinkInput) (*model.CheckoutLink, error) {
	if err := validateInput("checkout_link", &in); err != nil {
		return nil, err
	}

	link := &model.CheckoutLink{
		MerchantID: actor.UserID,
		Status:     entity.LinkStatusDraft,
	}
	in.apply(link)

	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if slug == "" {
		generated, err := s.generateSlug(ctx)
		if err != nil {
			return nil, err
		}
		slug = generated
	} else {
		taken, err := s.links.SlugExists(ctx, slug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, slugTakenError(slug, nil)
		}
	}
	link.Slug = slug

	if err := link.Validate(); err != nil {
		return nil, err
	}
	if err := s.links.Create(ctx, link); err != nil {
		// A concurrent create can claim the slug after SlugExists.
		if errors.Is(err, domainRepo.ErrConflict) {
			return nil, slugTakenError(slug, err)
		}
		return nil, err
	}
	return link, nil
}

func slugTakenError(slug string, cause error) error {
	return domainErrors.NewInvalidInputError("checkout_link", fmt.Sprintf("slug %q is already taken", slug), cause)
}

func (s *CheckoutLinkService) generateSlug(ctx context.Context) (string, error) {
	for i := 0; i < slugAttempts; i++ {
		slug, err := s.newID()
		if err != nil {
			return "", fmt.Errorf("failed to generate slug: %w", err)
		}
		taken, err := s.links.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		s.logger.Debug("CheckoutLinkService: Generated slug collided, retrying", zap.String("slug", slug))
	}
	return "", fmt.Errorf("no free slug after %d attempts", slugAttempts)
}

// Get returns one of the actor's links. Other merchants' links are not found.
func (s *CheckoutLinkService) Get(ctx context.Context, actor entity.Actor, id uuid.UUID) (*model.CheckoutLink, error) {
	return s.owned(ctx, actor, entity.ActionRead, id)
}

func (s *CheckoutLinkService) List(ctx context.Context, actor entity.Actor, page entity.PaginationParams) (*entity.Page[model.CheckoutLink], error) {
	page.Validate()

	items, total, err := s.links.ListByMerchant(ctx, actor.UserID, page)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.CheckoutLink{}
	}
	return &entity.Page[model.CheckoutLink]{
		Data:       items,
		Pagination: entity.NewPaginationMeta(page.Page, page.PageSize, total),
	}, nil
}

// Update replaces the editable fields. The slug is immutable once created.
func (s *CheckoutLinkService) Update(ctx context.Context, actor entity.Actor, id uuid.UUID, in CheckoutLinkInput) (*model.CheckoutLink, error) {
	if err := validateInput("checkout_link", &in); err != nil {
		return nil, err
	}

	link, err := s.owned(ctx, actor, entity.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	if in.Slug != "" && !strings.EqualFold(in.Slug, link.Slug) {
		return nil, domainErrors.NewInvalidInputError("checkout_link", "slug cannot be changed", nil)
	}

	in.apply(link)
	if err := link.Validate(); err != nil {
		return nil, err
	}
	if err := s.links.Update(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// SetStatus switches a link between active, inactive and draft.
func (s *CheckoutLinkService) SetStatus(ctx context.Context, actor entity.Actor, id uuid.UUID, status string) (*model.CheckoutLink, error) {
	st := entity.LinkStatus(status)
	if !st.IsValid() {
		return nil, domainErrors.NewInvalidInputError("checkout_link", fmt.Sprintf("unknown status %q", status), nil)
	}

	link, err := s.owned(ctx, actor, entity.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	link.Status = st
	if err := link.Validate(); err != nil {
		return nil, err
	}
	if err := s.links.Update(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// Delete removes a link that has never received a payment. Links with
// payments keep their history and can only be deactivated.
func (s *CheckoutLinkService) Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, entity.ActionDelete, id); err != nil {
		return err
	}

	used, err := s.links.HasPayments(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return linkInUseError(id, nil)
	}

	if err := s.links.Delete(ctx, id); err != nil {
		if errors.Is(err, domainRepo.ErrConflict) {
			return linkInUseError(id, err)
		}
		if errors.Is(err, domainRepo.ErrNotFound) {
			return domainErrors.NewNotFoundError("checkout_link", id.String())
		}
		return err
	}
	s.logger.Info("CheckoutLinkService: Checkout link deleted",
		zap.String("link_id", id.String()),
		zap.String("merchant_id", actor.UserID.String()))
	return nil
}

func linkInUseError(id uuid.UUID, cause error) error {
	return domainErrors.NewConflictError("checkout_link", id.String(),
		"checkout link has payments; deactivate it instead", cause)
}

func (s *CheckoutLinkService) owned(ctx context.Context, actor entity.Actor, action entity.Action, id uuid.UUID) (*model.CheckoutLink, error) {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainRepo.ErrNotFound) {
			return nil, domainErrors.NewNotFoundError("checkout_link", id.String())
		}
		return nil, err
	}
	resource := entity.Resource{Type: entity.ResourceCheckoutLink, ID: id.String(), OwnerID: link.MerchantID}
	if !s.authz.CurrentUserCan(ctx, actor, action, resource) {
		return nil, domainErrors.NewNotFoundError("checkout_link", id.String())
	}
	return link, nil
}
