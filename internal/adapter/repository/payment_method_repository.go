package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
)

type paymentMethodRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPaymentMethodRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentMethodRepository {
	return &paymentMethodRepository{db: db, logger: logger}
}

func (r *paymentMethodRepository) Create(ctx context.Context, method *model.PaymentMethod) error {
	if err := r.db.WithContext(ctx).Create(method).Error; err != nil {
		return fmt.Errorf("failed to create payment method: %w", err)
	}
	r.logger.Info("Payment method created",
		zap.String("method_id", method.ID.String()),
		zap.String("merchant_id", method.MerchantID.String()))
	return nil
}

func (r *paymentMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	var method model.PaymentMethod
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&method).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainRepo.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	return &method, nil
}

func (r *paymentMethodRepository) Update(ctx context.Context, method *model.PaymentMethod) error {
	result := r.db.WithContext(ctx).Model(method).Select("*").Omit("id", "merchant_id", "created_at").Updates(method)
	if result.Error != nil {
		return fmt.Errorf("failed to update payment method: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *paymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PaymentMethod{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete payment method: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *paymentMethodRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("display_order ASC, created_at ASC").
		Find(&methods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	return methods, nil
}

func (r *paymentMethodRepository) ListActiveForCountry(ctx context.Context, merchantID uuid.UUID, country string) ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND status = ? AND ? = ANY(countries)", merchantID, model.PaymentMethodStatusActive, country).
		Order("display_order ASC, created_at ASC").
		Find(&methods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods for country: %w", err)
	}
	return methods, nil
}
