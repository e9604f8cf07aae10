package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/adapter/repository"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
)

// Repositories holds all database-backed repository instances
type Repositories struct {
	Payment       domainRepo.PaymentRepository
	CheckoutLink  domainRepo.CheckoutLinkRepository
	PaymentMethod domainRepo.PaymentMethodRepository
	Notification  domainRepo.NotificationRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Payment:       repository.NewPaymentRepository(db, logger),
		CheckoutLink:  repository.NewCheckoutLinkRepository(db, logger),
		PaymentMethod: repository.NewPaymentMethodRepository(db, logger),
		Notification:  repository.NewNotificationRepository(db, logger),
	}
}
