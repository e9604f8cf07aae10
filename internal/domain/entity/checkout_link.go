package entity

import (
	"regexp"

	"github.com/shopspring/decimal"
)

type LinkStatus string

const (
	LinkStatusActive   LinkStatus = "active"
	LinkStatusInactive LinkStatus = "inactive"
	LinkStatusDraft    LinkStatus = "draft"
	LinkStatusExpired  LinkStatus = "expired"
)

func (s LinkStatus) IsValid() bool {
	switch s {
	case LinkStatusActive, LinkStatusInactive, LinkStatusDraft, LinkStatusExpired:
		return true
	}
	return false
}

type AmountType string

const (
	AmountTypeFixed    AmountType = "fixed"
	AmountTypeFlexible AmountType = "flexible"
)

func (t AmountType) IsValid() bool {
	return t == AmountTypeFixed || t == AmountTypeFlexible
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,98}[a-z0-9]$`)

// ValidSlug reports whether s can be a checkout link slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// CheckoutLinkView is the public projection of a checkout link.
// Merchant identifiers and internal timestamps are deliberately absent.
type CheckoutLinkView struct {
	Slug                 string           `json:"slug"`
	Title                string           `json:"title"`
	AmountType           AmountType       `json:"amount_type"`
	Amount               *decimal.Decimal `json:"amount,omitempty"`
	MinAmount            *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount            *decimal.Decimal `json:"max_amount,omitempty"`
	Currency             string           `json:"currency"`
	ActiveCountryCodes   []string         `json:"active_country_codes"`
	CheckoutPageHeading  string           `json:"checkout_page_heading,omitempty"`
	PaymentReviewMessage string           `json:"payment_review_message,omitempty"`
	IsActive             bool             `json:"is_active"`
}

// LinkValidation is the result of GET /api/checkout/{slug}/validate.
type LinkValidation struct {
	Valid    bool       `json:"valid"`
	IsActive bool       `json:"is_active"`
	Status   LinkStatus `json:"status,omitempty"`
}

type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CheckoutMethodView is what a customer sees for a payment method.
type CheckoutMethodView struct {
	Name                    string        `json:"name"`
	Type                    string        `json:"type"`
	InstructionsForCheckout string        `json:"instructions_for_checkout"`
	CustomFields            []CustomField `json:"custom_fields"`
}

// CustomField is a merchant-defined key/value shown on checkout (account number, phone, ...).
type CustomField struct {
	Label string `json:"label" validate:"required,max=100"`
	Value string `json:"value" validate:"required,max=500"`
	Type  string `json:"type,omitempty" validate:"omitempty,oneof=text number email phone url"`
}
