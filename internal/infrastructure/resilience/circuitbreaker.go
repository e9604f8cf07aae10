package resilience

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/metrics"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Settings tune a breaker; zero values fall back to defaults.
type Settings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// CircuitBreaker wraps gobreaker with zap logging and Prometheus metrics
type CircuitBreaker struct {
	cb      *gobreaker.CircuitBreaker
	name    string
	metrics *metrics.Metrics
}

// NewCircuitBreaker creates a breaker. m may be nil.
func NewCircuitBreaker(name string, s Settings, logger *zap.Logger, m *metrics.Metrics) *CircuitBreaker {
	if s.MaxRequests == 0 {
		s.MaxRequests = 3
	}
	if s.Interval == 0 {
		s.Interval = 15 * time.Second
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.MinRequests == 0 {
		s.MinRequests = 3
	}
	if s.FailureRatio == 0 {
		s.FailureRatio = 0.6
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		OnStateChange: func(cbName string, from, to gobreaker.State) {
			if m != nil {
				m.CircuitBreakerState.WithLabelValues(cbName).Set(stateValue(to))
			}
			logger.Warn("Circuit breaker state changed",
				zap.String("circuit", cbName),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	if m != nil {
		m.CircuitBreakerState.WithLabelValues(name).Set(0)
	}

	return &CircuitBreaker{cb: cb, name: name, metrics: m}
}

// Execute runs fn through the breaker. Open or half-open rejections are
// reported as ErrCircuitOpen.
func Execute[T any](b *CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if b.metrics != nil {
			b.metrics.CircuitBreakerFailures.WithLabelValues(b.name).Inc()
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w", b.name, ErrCircuitOpen)
		}
		return zero, err
	}
	return result.(T), nil
}

// State returns the current breaker state name.
func (b *CircuitBreaker) State() string {
	return b.cb.State().String()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
