package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/model"
)

// migrationStep is one idempotent schema change.
type migrationStep struct {
	name string
	run  func(tx *gorm.DB) error
}

func execStep(name, stmt string) migrationStep {
	return migrationStep{name: name, run: func(tx *gorm.DB) error { return tx.Exec(stmt).Error }}
}

// addCheck adds a CHECK constraint, ignoring it when it already exists.
func addCheck(table, constraint, expr string) migrationStep {
	return execStep("constraint "+constraint, fmt.Sprintf(`DO $$ BEGIN
	ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
EXCEPTION WHEN duplicate_object THEN NULL; END $$`, table, constraint, expr))
}

// addForeignKey adds a foreign key, ignoring it when it already exists.
func addForeignKey(table, constraint, column, ref, onDelete string) migrationStep {
	return execStep("constraint "+constraint, fmt.Sprintf(`DO $$ BEGIN
	ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s ON DELETE %s;
EXCEPTION WHEN duplicate_object THEN NULL; END $$`, table, constraint, column, ref, onDelete))
}

var migrationSteps = []migrationStep{
	execStep("extension pgcrypto", `CREATE EXTENSION IF NOT EXISTS "pgcrypto"`),
	{name: "auto-migrate models", run: func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&model.CheckoutLink{},
			&model.PaymentMethod{},
			&model.Payment{},
			&model.PaymentAuditLog{},
			&model.Notification{},
		)
	}},
	execStep("index checkout link countries",
		`CREATE INDEX IF NOT EXISTS idx_checkout_links_countries ON checkout_links USING GIN (active_country_codes)`),
	execStep("index payment method countries",
		`CREATE INDEX IF NOT EXISTS idx_payment_methods_countries ON payment_methods USING GIN (countries)`),
	execStep("index pending payments",
		`CREATE INDEX IF NOT EXISTS idx_payments_pending ON payments (merchant_id, created_at) WHERE status IN ('pending', 'pending_verification')`),
	execStep("index unread notifications",
		`CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications (user_id, created_at DESC) WHERE is_read = false`),
	addCheck("payments", "chk_payments_status",
		`status IN ('pending', 'pending_verification', 'completed', 'failed')`),
	addCheck("checkout_links", "chk_checkout_links_status",
		`status IN ('active', 'inactive', 'expired', 'draft')`),
	addForeignKey("payments", "fk_payments_checkout_link",
		"checkout_link_id", "checkout_links(id)", "RESTRICT"),
}

// Migrate applies every schema step in order. Steps are idempotent so it runs
// on each start.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	started := time.Now()
	for _, step := range migrationSteps {
		if err := step.run(db); err != nil {
			logger.Error("Migration step failed", zap.String("step", step.name), zap.Error(err))
			return fmt.Errorf("migration %q: %w", step.name, err)
		}
		logger.Debug("Migration step applied", zap.String("step", step.name))
	}
	logger.Info("Database schema up to date",
		zap.Int("steps", len(migrationSteps)),
		zap.Duration("took", time.Since(started)))
	return nil
}
