package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
)

type PaymentMethodRepository interface {
	Create(ctx context.Context, method *model.PaymentMethod) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error)
	Update(ctx context.Context, method *model.PaymentMethod) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]model.PaymentMethod, error)
	// ListActiveForCountry returns active methods of the merchant that list country.
	ListActiveForCountry(ctx context.Context, merchantID uuid.UUID, country string) ([]model.PaymentMethod, error)
}
