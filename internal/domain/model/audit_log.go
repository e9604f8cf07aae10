package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
)

// Audit actions
const (
	AuditActionSubmitted = "submitted"
	AuditActionVerified  = "verified"
)

// PaymentAuditLog records every status change of a payment
type PaymentAuditLog struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentID  uuid.UUID            `gorm:"type:uuid;not null;index" json:"payment_id"`
	ActorID    *uuid.UUID           `gorm:"type:uuid" json:"actor_id,omitempty"`
	Action     string               `gorm:"size:32;not null" json:"action"`
	FromStatus entity.PaymentStatus `gorm:"size:32" json:"from_status,omitempty"`
	ToStatus   entity.PaymentStatus `gorm:"size:32;not null" json:"to_status"`
	Metadata   datatypes.JSONMap    `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt  time.Time            `gorm:"default:now();index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (PaymentAuditLog) TableName() string {
	return "payment_audit_logs"
}

func (a *PaymentAuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
