package usecase

// MetricsRecorder counts workflow outcomes. Every service accepts a nil
// recorder.
type MetricsRecorder interface {
	PaymentSubmitted(currency, result string)
	PaymentVerification(decision, result string)
	NotificationDispatch(stage, result string)
}
