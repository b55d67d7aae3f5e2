package decode

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"resumeparser/internal/config"
	"resumeparser/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// DecoderCircuitBreaker wraps conversion calls with the circuit breaker pattern
type DecoderCircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[string]
}

// NewDecoderCircuitBreaker creates a circuit breaker for the named decoder.
// It returns nil when the breaker is disabled.
func NewDecoderCircuitBreaker(name string, cfg *config.CircuitBreakerConfig, logger *errors.Logger) *DecoderCircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = errors.Discard()
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("Decoder-%s", name),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// The service answered; the document was the problem
			var statusErr *statusError
			return err == nil || (stderrors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError && statusErr.StatusCode != http.StatusTooManyRequests)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &DecoderCircuitBreaker{
		cb: gobreaker.NewCircuitBreaker[string](settings),
	}
}

// Execute executes fn with circuit breaker protection
func (cb *DecoderCircuitBreaker) Execute(fn func() (string, error)) (string, error) {
	if cb == nil || cb.cb == nil {
		return fn()
	}
	return cb.cb.Execute(fn)
}

// GetStats returns circuit breaker statistics
func (cb *DecoderCircuitBreaker) GetStats() map[string]any {
	if cb == nil || cb.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    cb.cb.Name(),
		"state":   cb.cb.State().String(),
		"counts":  cb.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (cb *DecoderCircuitBreaker) IsHealthy() bool {
	if cb == nil || cb.cb == nil {
		return true
	}
	return cb.cb.State() == gobreaker.StateClosed
}
