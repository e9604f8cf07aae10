package metrics

// The methods below let use cases record outcomes without touching collectors.
// A nil *Metrics records nothing.

func (m *Metrics) PaymentSubmitted(currency, result string) {
	if m == nil {
		return
	}
	m.PaymentsSubmitted.WithLabelValues(currency, result).Inc()
}

func (m *Metrics) PaymentVerification(decision, result string) {
	if m == nil {
		return
	}
	m.PaymentVerifications.WithLabelValues(decision, result).Inc()
}

func (m *Metrics) NotificationDispatch(stage, result string) {
	if m == nil {
		return
	}
	m.NotificationsDispatch.WithLabelValues(stage, result).Inc()
}
