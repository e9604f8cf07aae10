package usecase

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
)

// DashboardService derives merchant statistics from stored rows at read time
type DashboardService struct {
	payments      domainRepo.PaymentRepository
	links         domainRepo.CheckoutLinkRepository
	notifications domainRepo.NotificationRepository
	logger        *zap.Logger
}

func NewDashboardService(
	payments domainRepo.PaymentRepository,
	links domainRepo.CheckoutLinkRepository,
	notifications domainRepo.NotificationRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		payments:      payments,
		links:         links,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *DashboardService) Stats(ctx context.Context, actor entity.Actor) (*entity.DashboardStats, error) {
	stats := &entity.DashboardStats{
		ByStatus:        make(map[entity.PaymentStatus]int64, len(entity.AllPaymentStatuses)),
		CompletedTotals: make(map[string]decimal.Decimal),
	}
	for _, st := range entity.AllPaymentStatuses {
		stats.ByStatus[st] = 0
	}

	var (
		counts []entity.StatusCount
		totals []entity.CurrencyTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.payments.CountByStatus(gctx, actor.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.payments.CompletedTotals(gctx, actor.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.ActiveLinks, err = s.links.CountActive(gctx, actor.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.UnreadCount, err = s.notifications.CountUnread(gctx, actor.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("DashboardService: Failed to compute stats",
			zap.String("merchant_id", actor.UserID.String()),
			zap.Error(err))
		return nil, err
	}

	for _, c := range counts {
		stats.ByStatus[c.Status] += c.Count
		stats.TotalPayments += c.Count
	}
	for _, t := range totals {
		stats.CompletedTotals[t.Currency] = t.Total
	}
	return stats, nil
}
