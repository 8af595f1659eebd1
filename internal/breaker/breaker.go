// Package breaker wraps upstream calls in a circuit breaker that reports
// its state through the shared Prometheus collectors.
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mmcdole/moviedb/internal/domain"
	"github.com/mmcdole/moviedb/internal/metrics"
)

// Settings tunes a Breaker. Zero values fall back to the defaults below.
type Settings struct {
	MaxRequests  uint32        // requests allowed while half-open
	Interval     time.Duration // closed-state window after which counts reset
	Timeout      time.Duration // open duration before probing again
	MinRequests  uint32        // requests in the window before the ratio is considered
	FailureRatio float64
}

// DefaultSettings opens after 60% failures over at least 10 requests in a
// minute and lets one trial request through after 30 seconds.
func DefaultSettings() Settings {
	return Settings{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// Breaker guards calls to one upstream service
type Breaker struct {
	name   string
	cb     *gobreaker.CircuitBreaker[any]
	logger *slog.Logger
}

// New creates a breaker named after the upstream it protects
func New(name string, st Settings, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultSettings()
	if st.MaxRequests == 0 {
		st.MaxRequests = def.MaxRequests
	}
	if st.Interval == 0 {
		st.Interval = def.Interval
	}
	if st.Timeout == 0 {
		st.Timeout = def.Timeout
	}
	if st.MinRequests == 0 {
		st.MinRequests = def.MinRequests
	}
	if st.FailureRatio == 0 {
		st.FailureRatio = def.FailureRatio
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	b := &Breaker{name: name, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: st.MaxRequests,
		Interval:    st.Interval,
		Timeout:     st.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < st.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= st.FailureRatio {
				logger.Warn("opening circuit", "breaker", name, "failures", counts.TotalFailures, "ratio", ratio)
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		IsExcluded: isCallerError,
	})
	return b
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.name
}

// State returns "closed", "half-open" or "open"
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Execute runs fn through the breaker. Rejected calls return an error
// wrapping domain.ErrServiceOffline.
func Execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			b.logger.Warn("request rejected by circuit breaker", "breaker", b.name, "error", err)
			return zero, errors.Join(domain.ErrServiceOffline, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return zero, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	v, _ := result.(T)
	return v, nil
}

// isCallerError reports errors that say nothing about upstream health
func isCallerError(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidMediaType) ||
		errors.Is(err, domain.ErrNoTrailer) ||
		errors.Is(err, domain.ErrEmptyResults) ||
		errors.Is(err, domain.ErrAuthFailed) ||
		errors.Is(err, domain.ErrInvalidAvatar)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
