package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) CreateWithAudit(ctx context.Context, payment *model.Payment, audit *model.PaymentAuditLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		audit.PaymentID = payment.ID
		if err := tx.Create(audit).Error; err != nil {
			return fmt.Errorf("failed to create payment audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Payment insert rolled back",
			zap.String("payment_id", payment.ID.String()),
			zap.String("checkout_link_id", payment.CheckoutLinkID.String()),
			zap.Error(err))
		return err
	}

	r.logger.Info("Payment created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("merchant_id", payment.MerchantID.String()),
		zap.String("status", string(payment.Status)))
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainRepo.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

// CompareAndSwapStatus issues UPDATE ... WHERE id = ? AND status = ?. Under
// concurrent verification the row lock serialises writers and the loser's
// WHERE re-check matches zero rows.
func (r *paymentRepository) CompareAndSwapStatus(ctx context.Context, change domainRepo.StatusChange) (bool, error) {
	swapped := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Payment{}).
			Where("id = ? AND status = ?", change.PaymentID, change.From).
			Updates(map[string]interface{}{
				"status":      change.To,
				"verified_at": change.At,
				"verified_by": change.ActorID,
				"updated_at":  change.At,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update payment status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		swapped = true

		actor := change.ActorID
		audit := &model.PaymentAuditLog{
			PaymentID:  change.PaymentID,
			ActorID:    &actor,
			Action:     model.AuditActionVerified,
			FromStatus: change.From,
			ToStatus:   change.To,
			Metadata:   datatypes.JSONMap{},
			CreatedAt:  change.At,
		}
		if err := tx.Create(audit).Error; err != nil {
			return fmt.Errorf("failed to create payment audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Payment status update failed",
			zap.String("payment_id", change.PaymentID.String()),
			zap.String("from", string(change.From)),
			zap.String("to", string(change.To)),
			zap.Error(err))
		return false, err
	}

	r.logger.Info("Payment status compare-and-swap",
		zap.String("payment_id", change.PaymentID.String()),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
		zap.Bool("swapped", swapped))
	return swapped, nil
}

func (r *paymentRepository) List(ctx context.Context, filter domainRepo.PaymentFilter) ([]model.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Payment{}).Where("merchant_id = ?", filter.MerchantID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var payments []model.Payment
	err := query.
		Order("created_at DESC").
		Limit(filter.Pagination.PageSize).
		Offset(filter.Pagination.Offset()).
		Find(&payments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, total, nil
}

func (r *paymentRepository) CountByStatus(ctx context.Context, merchantID uuid.UUID) ([]entity.StatusCount, error) {
	var rows []entity.StatusCount
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Select("status, COUNT(*) AS count").
		Where("merchant_id = ?", merchantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count payments by status: %w", err)
	}
	return rows, nil
}

func (r *paymentRepository) CompletedTotals(ctx context.Context, merchantID uuid.UUID) ([]entity.CurrencyTotal, error) {
	var rows []entity.CurrencyTotal
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Select("currency, COALESCE(SUM(amount), 0) AS total").
		Where("merchant_id = ? AND status = ?", merchantID, entity.PaymentStatusCompleted).
		Group("currency").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum completed payments: %w", err)
	}
	return rows, nil
}

func (r *paymentRepository) DeleteByStatusBefore(ctx context.Context, status entity.PaymentStatus, before time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := tx.Model(&model.Payment{}).Select("id").Where("status = ? AND created_at < ?", status, before)
		if err := tx.Where("payment_id IN (?)", sub).Delete(&model.PaymentAuditLog{}).Error; err != nil {
			return fmt.Errorf("failed to delete audit logs: %w", err)
		}
		result := tx.Where("status = ? AND created_at < ?", status, before).Delete(&model.Payment{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete payments: %w", result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Warn("Payments deleted by admin cleanup",
		zap.String("status", string(status)),
		zap.Time("before", before),
		zap.Int64("deleted", deleted))
	return deleted, nil
}
