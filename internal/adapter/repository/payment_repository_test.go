package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock
}

func TestPaymentRepository_CreateWithAudit(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPaymentRepository(db, zap.NewNop())

	payment := &model.Payment{
		MerchantID:     uuid.New(),
		CheckoutLinkID: uuid.New(),
		Amount:         decimal.NewFromInt(100),
		Currency:       "XAF",
		Status:         entity.PaymentStatusPending,
		CustomerName:   "Jane Doe",
		Country:        "CM",
	}
	audit := &model.PaymentAuditLog{
		Action:   model.AuditActionSubmitted,
		ToStatus: entity.PaymentStatusPending,
		Metadata: datatypes.JSONMap{},
	}

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payment_audit_logs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectCommit()

	err := repo.CreateWithAudit(context.Background(), payment, audit)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, payment.ID)
	assert.Equal(t, payment.ID, audit.PaymentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_CreateWithAudit_RollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPaymentRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payments"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.CreateWithAudit(context.Background(), &model.Payment{
		Amount:   decimal.NewFromInt(5),
		Currency: "USD",
		Status:   entity.PaymentStatusPending,
	}, &model.PaymentAuditLog{Action: model.AuditActionSubmitted, ToStatus: entity.PaymentStatusPending})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_CompareAndSwapStatus(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		expectAudit  bool
		wantSwapped  bool
	}{
		{name: "status still matches", rowsAffected: 1, expectAudit: true, wantSwapped: true},
		{name: "status already changed", rowsAffected: 0, expectAudit: false, wantSwapped: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewPaymentRepository(db, zap.NewNop())

			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "payments" SET .* WHERE \(?id = \$\d+ AND status = \$\d+\)?`).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))
			if tt.expectAudit {
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payment_audit_logs"`)).
					WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
			}
			mock.ExpectCommit()

			swapped, err := repo.CompareAndSwapStatus(context.Background(), domainRepo.StatusChange{
				PaymentID: uuid.New(),
				From:      entity.PaymentStatusPending,
				To:        entity.PaymentStatusCompleted,
				ActorID:   uuid.New(),
				At:        time.Now(),
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantSwapped, swapped)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPaymentRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPaymentRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	payment, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainRepo.ErrNotFound)
	assert.Nil(t, payment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPaymentRepository(db, zap.NewNop())
	merchantID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "status", "currency"}).
			AddRow(uuid.New().String(), merchantID.String(), "pending", "XAF").
			AddRow(uuid.New().String(), merchantID.String(), "completed", "XAF"))

	payments, total, err := repo.List(context.Background(), domainRepo.PaymentFilter{
		MerchantID: merchantID,
		Pagination: entity.PaginationParams{Page: 1, PageSize: 20},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, payments, 2)
	assert.Equal(t, entity.PaymentStatusCompleted, payments[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		want         bool
	}{
		{name: "own notification", rowsAffected: 1, want: true},
		{name: "someone else's notification", rowsAffected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewNotificationRepository(db, zap.NewNop())

			mock.ExpectExec(`UPDATE "notifications" SET "is_read"=\$1 WHERE \(?id = \$2 AND user_id = \$3\)?`).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			ok, err := repo.MarkRead(context.Background(), uuid.New(), uuid.New())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCheckoutLinkRepository_GetBySlug_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCheckoutLinkRepository(db, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "checkout_links" WHERE slug = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	link, err := repo.GetBySlug(context.Background(), "missing-link")
	assert.ErrorIs(t, err, domainRepo.ErrNotFound)
	assert.Nil(t, link)
	assert.NoError(t, mock.ExpectationsWereMet())
}
