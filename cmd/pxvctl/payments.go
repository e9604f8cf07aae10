package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/entity"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/database"
)

func paymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Payment maintenance",
	}
	cmd.AddCommand(cleanupCmd())
	return cmd
}

func cleanupCmd() *cobra.Command {
	var (
		status string
		before string
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete payments in a status created before a date",
		Long: `Delete payments (and their audit entries) with --status created before --before.

Payments are never removed automatically; this is the only deletion path.
Proof objects in storage are left in place.

Examples:
  pxvctl payments cleanup --status failed --before 2026-01-01
  pxvctl payments cleanup --status pending --before 2026-03-01T00:00:00Z`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cutoff, err := parseCleanupArgs(status, before, time.Now())
			if err != nil {
				return err
			}

			e, closeFn, err := openEnv()
			if err != nil {
				return err
			}
			defer closeFn()

			repos := database.NewRepositories(e.db, e.logger)
			deleted, err := repos.Payment.DeleteByStatusBefore(cmd.Context(), st, cutoff)
			if err != nil {
				return fmt.Errorf("cleanup: %w", err)
			}

			e.logger.Info("Payments cleaned up",
				zap.String("status", string(st)),
				zap.Time("before", cutoff),
				zap.Int64("deleted", deleted))
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d %s payments created before %s\n", deleted, st, cutoff.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "payment status to delete (pending, pending_verification, completed, failed)")
	cmd.Flags().StringVar(&before, "before", "", "cutoff date, YYYY-MM-DD or RFC3339")
	_ = cmd.MarkFlagRequired("status")
	_ = cmd.MarkFlagRequired("before")

	return cmd
}

func parseCleanupArgs(status, before string, now time.Time) (entity.PaymentStatus, time.Time, error) {
	st, err := entity.ParsePaymentStatus(status)
	if err != nil || st == "" {
		return "", time.Time{}, fmt.Errorf("--status must be one of pending, pending_verification, completed, failed")
	}

	cutoff, err := time.Parse(time.RFC3339, before)
	if err != nil {
		cutoff, err = time.Parse(time.DateOnly, before)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("--before must be YYYY-MM-DD or RFC3339, got %q", before)
		}
	}
	if cutoff.After(now) {
		return "", time.Time{}, fmt.Errorf("--before %s is in the future", cutoff.Format(time.RFC3339))
	}
	return st, cutoff, nil
}
