package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	domainErrors "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/errors"
)

// CheckoutLink is a merchant-configured public checkout page
type CheckoutLink struct {
	ID                   uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	MerchantID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Slug                 string            `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	Title                string            `gorm:"size:200;not null" json:"title"`
	AmountType           entity.AmountType `gorm:"size:16;not null" json:"amount_type"`
	Amount               *decimal.Decimal  `gorm:"type:numeric(18,2)" json:"amount,omitempty"`
	MinAmount            *decimal.Decimal  `gorm:"type:numeric(18,2)" json:"min_amount,omitempty"`
	MaxAmount            *decimal.Decimal  `gorm:"type:numeric(18,2)" json:"max_amount,omitempty"`
	Currency             string            `gorm:"size:3;not null" json:"currency"`
	ActiveCountryCodes   pq.StringArray    `gorm:"type:text[];not null;default:'{}'" json:"active_country_codes"`
	Status               entity.LinkStatus `gorm:"size:16;not null;default:'draft'" json:"status"`
	CheckoutPageHeading  string            `gorm:"type:text" json:"checkout_page_heading,omitempty"`
	PaymentReviewMessage string            `gorm:"type:text" json:"payment_review_message,omitempty"`
	ExpiresAt            *time.Time        `json:"expires_at,omitempty"`
	CreatedAt            time.Time         `gorm:"default:now()" json:"created_at"`
	UpdatedAt            time.Time         `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (CheckoutLink) TableName() string {
	return "checkout_links"
}

func (l *CheckoutLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// EffectiveStatus folds a past expiry into the expired state.
func (l *CheckoutLink) EffectiveStatus(now time.Time) entity.LinkStatus {
	if l.Status == entity.LinkStatusActive && l.ExpiresAt != nil && !now.Before(*l.ExpiresAt) {
		return entity.LinkStatusExpired
	}
	return l.Status
}

func (l *CheckoutLink) IsActive(now time.Time) bool {
	return l.EffectiveStatus(now) == entity.LinkStatusActive
}

// AcceptsCountry reports whether code is in the link's active countries.
func (l *CheckoutLink) AcceptsCountry(code string) bool {
	for _, c := range l.ActiveCountryCodes {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}

// ResolveAmount returns the amount to record for a submission. Fixed links
// always charge their configured amount; flexible links require requested
// within [MinAmount, MaxAmount].
func (l *CheckoutLink) ResolveAmount(requested *decimal.Decimal) (decimal.Decimal, error) {
	switch l.AmountType {
	case entity.AmountTypeFixed:
		if l.Amount == nil {
			return decimal.Zero, fmt.Errorf("fixed checkout link %s has no amount", l.Slug)
		}
		return *l.Amount, nil
	case entity.AmountTypeFlexible:
		if l.MinAmount == nil || l.MaxAmount == nil {
			return decimal.Zero, fmt.Errorf("flexible checkout link %s has no range", l.Slug)
		}
		if requested == nil {
			return decimal.Zero, domainErrors.NewInvalidInputError("payment", "amount is required for this checkout", nil)
		}
		if requested.LessThan(*l.MinAmount) || requested.GreaterThan(*l.MaxAmount) {
			return decimal.Zero, domainErrors.NewAmountOutOfRangeError(l.Slug, requested.String(), l.MinAmount.String(), l.MaxAmount.String())
		}
		return *requested, nil
	default:
		return decimal.Zero, fmt.Errorf("checkout link %s has unknown amount type %q", l.Slug, l.AmountType)
	}
}

// Validate checks the link invariants before it is stored.
func (l *CheckoutLink) Validate() error {
	invalid := func(msg string) error {
		return domainErrors.NewInvalidInputError("checkout_link", msg, nil)
	}

	if !entity.ValidSlug(l.Slug) {
		return invalid("slug must be 3-100 lowercase letters, digits or dashes")
	}
	if strings.TrimSpace(l.Title) == "" {
		return invalid("title is required")
	}
	if !l.Status.IsValid() {
		return invalid("unknown status")
	}
	if len(l.Currency) != 3 || strings.ToUpper(l.Currency) != l.Currency {
		return invalid("currency must be a 3-letter upper-case code")
	}

	switch l.AmountType {
	case entity.AmountTypeFixed:
		if l.Amount == nil || !l.Amount.IsPositive() {
			return invalid("fixed links need a positive amount")
		}
		l.MinAmount, l.MaxAmount = nil, nil
	case entity.AmountTypeFlexible:
		if l.MinAmount == nil || l.MaxAmount == nil {
			return invalid("flexible links need min_amount and max_amount")
		}
		if l.MinAmount.IsNegative() || l.MinAmount.GreaterThan(*l.MaxAmount) {
			return invalid("min_amount must be non-negative and not above max_amount")
		}
		l.Amount = nil
	default:
		return invalid("amount_type must be fixed or flexible")
	}

	for i, c := range l.ActiveCountryCodes {
		code, ok := entity.NormalizeCountry(c)
		if !ok {
			return invalid(fmt.Sprintf("unknown country code %q", c))
		}
		l.ActiveCountryCodes[i] = code
	}
	if l.Status == entity.LinkStatusActive && len(l.ActiveCountryCodes) == 0 {
		return invalid("active links need at least one country")
	}
	return nil
}

// View projects the link to its public shape.
func (l *CheckoutLink) View(now time.Time) entity.CheckoutLinkView {
	countries := []string(l.ActiveCountryCodes)
	if countries == nil {
		countries = []string{}
	}
	return entity.CheckoutLinkView{
		Slug:                 l.Slug,
		Title:                l.Title,
		AmountType:           l.AmountType,
		Amount:               l.Amount,
		MinAmount:            l.MinAmount,
		MaxAmount:            l.MaxAmount,
		Currency:             l.Currency,
		ActiveCountryCodes:   countries,
		CheckoutPageHeading:  l.CheckoutPageHeading,
		PaymentReviewMessage: l.PaymentReviewMessage,
		IsActive:             l.IsActive(now),
	}
}
