package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
)

// Payment is a customer's proof-of-payment submission against a checkout link
type Payment struct {
	ID              uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	MerchantID      uuid.UUID            `gorm:"type:uuid;not null;index:idx_payments_merchant_status" json:"merchant_id"`
	CheckoutLinkID  uuid.UUID            `gorm:"type:uuid;not null;index" json:"checkout_link_id"`
	Amount          decimal.Decimal      `gorm:"type:numeric(18,2);not null" json:"amount"`
	Currency        string               `gorm:"size:3;not null" json:"currency"`
	PaymentMethod   string               `gorm:"size:200" json:"payment_method"`
	Status          entity.PaymentStatus `gorm:"size:32;not null;index:idx_payments_merchant_status" json:"status"`
	CustomerName    string               `gorm:"size:200;not null" json:"customer_name"`
	CustomerEmail   string               `gorm:"size:320" json:"customer_email,omitempty"`
	Country         string               `gorm:"size:2" json:"country"`
	PaymentProofURL string               `gorm:"column:payment_proof_url" json:"payment_proof_url,omitempty"`
	ProofObjectKey  string               `gorm:"column:proof_object_key;size:512" json:"-"`
	VerifiedAt      *time.Time           `json:"verified_at,omitempty"`
	VerifiedBy      *uuid.UUID           `gorm:"type:uuid" json:"verified_by,omitempty"`
	CreatedAt       time.Time            `gorm:"default:now();index" json:"created_at"`
	UpdatedAt       time.Time            `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// BeforeCreate assigns an id when the caller has not pre-allocated one.
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HasProof reports whether a proof file was stored for this payment.
func (p *Payment) HasProof() bool {
	return p.ProofObjectKey != ""
}
