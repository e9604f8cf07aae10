package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
)

// StatusChange is a conditional status update: it applies only while the
// stored status still equals From.
type StatusChange struct {
	PaymentID uuid.UUID
	From      entity.PaymentStatus
	To        entity.PaymentStatus
	ActorID   uuid.UUID
	At        time.Time
}

type PaymentFilter struct {
	MerchantID uuid.UUID
	Status     entity.PaymentStatus
	Pagination entity.PaginationParams
}

type PaymentRepository interface {
	// CreateWithAudit inserts the payment and its audit entry in one transaction.
	CreateWithAudit(ctx context.Context, payment *model.Payment, audit *model.PaymentAuditLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	// CompareAndSwapStatus returns false without error when the stored status
	// no longer equals change.From.
	CompareAndSwapStatus(ctx context.Context, change StatusChange) (bool, error)
	List(ctx context.Context, filter PaymentFilter) ([]model.Payment, int64, error)
	CountByStatus(ctx context.Context, merchantID uuid.UUID) ([]entity.StatusCount, error)
	CompletedTotals(ctx context.Context, merchantID uuid.UUID) ([]entity.CurrencyTotal, error)
	// DeleteByStatusBefore is the explicit admin cleanup path.
	DeleteByStatusBefore(ctx context.Context, status entity.PaymentStatus, before time.Time) (int64, error)
}
