package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
)

type checkoutLinkRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCheckoutLinkRepository(db *gorm.DB, logger *zap.Logger) domainRepo.CheckoutLinkRepository {
	return &checkoutLinkRepository{db: db, logger: logger}
}

func (r *checkoutLinkRepository) Create(ctx context.Context, link *model.CheckoutLink) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("checkout link slug %q: %w", link.Slug, domainRepo.ErrConflict)
		}
		return fmt.Errorf("failed to create checkout link: %w", err)
	}
	r.logger.Info("Checkout link created",
		zap.String("link_id", link.ID.String()),
		zap.String("slug", link.Slug),
		zap.String("merchant_id", link.MerchantID.String()))
	return nil
}

func (r *checkoutLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CheckoutLink, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *checkoutLinkRepository) GetBySlug(ctx context.Context, slug string) (*model.CheckoutLink, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *checkoutLinkRepository) first(ctx context.Context, where string, arg interface{}) (*model.CheckoutLink, error) {
	var link model.CheckoutLink
	err := r.db.WithContext(ctx).Where(where, arg).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainRepo.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get checkout link: %w", err)
	}
	return &link, nil
}

func (r *checkoutLinkRepository) Update(ctx context.Context, link *model.CheckoutLink) error {
	result := r.db.WithContext(ctx).Model(link).Select("*").Omit("id", "merchant_id", "created_at").Updates(link)
	if result.Error != nil {
		return fmt.Errorf("failed to update checkout link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *checkoutLinkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.CheckoutLink{})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return fmt.Errorf("checkout link %s is referenced by payments: %w", id, domainRepo.ErrConflict)
		}
		return fmt.Errorf("failed to delete checkout link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *checkoutLinkRepository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, page entity.PaginationParams) ([]model.CheckoutLink, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.CheckoutLink{}).Where("merchant_id = ?", merchantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count checkout links: %w", err)
	}

	var links []model.CheckoutLink
	err := query.Order("created_at DESC").Limit(page.PageSize).Offset(page.Offset()).Find(&links).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list checkout links: %w", err)
	}
	return links, total, nil
}

func (r *checkoutLinkRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.CheckoutLink{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return count > 0, nil
}

func (r *checkoutLinkRepository) HasPayments(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("checkout_link_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check checkout link payments: %w", err)
	}
	return count > 0, nil
}

func (r *checkoutLinkRepository) CountActive(ctx context.Context, merchantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CheckoutLink{}).
		Where("merchant_id = ? AND status = ? AND (expires_at IS NULL OR expires_at > now())", merchantID, entity.LinkStatusActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active checkout links: %w", err)
	}
	return count, nil
}
