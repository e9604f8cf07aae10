package entity

import "fmt"

type PaymentStatus string

const (
	PaymentStatusPending             PaymentStatus = "pending"
	PaymentStatusPendingVerification PaymentStatus = "pending_verification"
	PaymentStatusCompleted           PaymentStatus = "completed"
	PaymentStatusFailed              PaymentStatus = "failed"
)

// AllPaymentStatuses lists every valid status in lifecycle order.
var AllPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPendingVerification,
	PaymentStatusCompleted,
	PaymentStatusFailed,
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPendingVerification, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no transition may leave s.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// CanTransitionTo encodes pending -> pending_verification -> {completed, failed}.
// A pending payment may also be decided directly.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return next == PaymentStatusPendingVerification || next.IsTerminal()
	case PaymentStatusPendingVerification:
		return next.IsTerminal()
	default:
		return false
	}
}

// ParseDecision accepts only the two verification outcomes.
func ParseDecision(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusCompleted, PaymentStatusFailed:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("decision must be %q or %q, got %q", PaymentStatusCompleted, PaymentStatusFailed, s)
}

// ParsePaymentStatus is used for list filters; empty means any.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	if s == "" {
		return "", nil
	}
	st := PaymentStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("unknown payment status %q", s)
	}
	return st, nil
}
