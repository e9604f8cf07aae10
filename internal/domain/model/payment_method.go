package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
)

// Payment method types
const (
	PaymentMethodTypeManual      = "manual"
	PaymentMethodTypeBank        = "bank"
	PaymentMethodTypeMobileMoney = "mobile_money"
	PaymentMethodTypeCrypto      = "crypto"
)

// Payment method statuses
const (
	PaymentMethodStatusActive   = "active"
	PaymentMethodStatusInactive = "inactive"
)

// PaymentMethod describes how a customer pays a merchant out of band
type PaymentMethod struct {
	ID                      uuid.UUID                               `gorm:"type:uuid;primaryKey" json:"id"`
	MerchantID              uuid.UUID                               `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Name                    string                                  `gorm:"size:200;not null" json:"name"`
	Type                    string                                  `gorm:"size:32;not null;default:'manual'" json:"type"`
	Countries               pq.StringArray                          `gorm:"type:text[];not null;default:'{}'" json:"countries"`
	InstructionsForCheckout string                                  `gorm:"type:text" json:"instructions_for_checkout"`
	CustomFields            datatypes.JSONSlice[entity.CustomField] `gorm:"type:jsonb;default:'[]'" json:"custom_fields"`
	Status                  string                                  `gorm:"size:16;not null;default:'active'" json:"status"`
	DisplayOrder            int                                     `gorm:"not null;default:0" json:"display_order"`
	CreatedAt               time.Time                               `gorm:"default:now()" json:"created_at"`
	UpdatedAt               time.Time                               `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PaymentMethod) TableName() string {
	return "payment_methods"
}

func (m *PaymentMethod) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *PaymentMethod) SupportsCountry(code string) bool {
	for _, c := range m.Countries {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}

// CheckoutView hides merchant ownership and ordering details.
func (m *PaymentMethod) CheckoutView() entity.CheckoutMethodView {
	fields := []entity.CustomField(m.CustomFields)
	if fields == nil {
		fields = []entity.CustomField{}
	}
	return entity.CheckoutMethodView{
		Name:                    m.Name,
		Type:                    m.Type,
		InstructionsForCheckout: m.InstructionsForCheckout,
		CustomFields:            fields,
	}
}
