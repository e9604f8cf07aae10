package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
)

type CheckoutLinkRepository interface {
	Create(ctx context.Context, link *model.CheckoutLink) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.CheckoutLink, error)
	GetBySlug(ctx context.Context, slug string) (*model.CheckoutLink, error)
	Update(ctx context.Context, link *model.CheckoutLink) error
	// Delete returns ErrConflict while payments still reference the link.
	Delete(ctx context.Context, id uuid.UUID) error
	HasPayments(ctx context.Context, id uuid.UUID) (bool, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, page entity.PaginationParams) ([]model.CheckoutLink, int64, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	CountActive(ctx context.Context, merchantID uuid.UUID) (int64, error)
}
