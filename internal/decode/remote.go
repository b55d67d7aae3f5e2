package decode

import (
	"bytes"
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"resumeparser/internal/config"
	"resumeparser/internal/errors"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	maxResponseBytes = 32 << 20
	maxBackoff       = 30 * time.Second
)

// RemoteDecoder sends documents to a Tika-compatible conversion service
type RemoteDecoder struct {
	endpoint       string
	token          string
	httpClient     *http.Client
	maxRetries     int
	retryBackoff   time.Duration
	circuitBreaker *DecoderCircuitBreaker
	logger         *errors.Logger
}

var _ Decoder = (*RemoteDecoder)(nil)

// statusError is a non-2xx reply from the conversion service
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("conversion service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("conversion service returned %d: %s", e.StatusCode, e.Body)
}

// NewRemoteDecoder creates a decoder backed by the configured endpoint
func NewRemoteDecoder(cfg *config.DecoderConfig, logger *errors.Logger) (*RemoteDecoder, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	if cfg.Endpoint == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"Remote decoder requires an endpoint", nil)
	}

	return &RemoteDecoder{
		endpoint:       strings.TrimRight(cfg.Endpoint, "/") + "/tika",
		token:          cfg.Token,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		maxRetries:     cfg.MaxRetries,
		retryBackoff:   cfg.RetryBackoff,
		circuitBreaker: NewDecoderCircuitBreaker("remote", &cfg.CircuitBreaker, logger),
		logger:         logger,
	}, nil
}

// Name implements Decoder
func (d *RemoteDecoder) Name() string { return "remote" }

// Decode implements Decoder
func (d *RemoteDecoder) Decode(ctx context.Context, data []byte, mimeType string) (string, error) {
	ctx, span := otel.Tracer("resumeparser.decode").Start(ctx, "decode.remote")
	defer span.End()

	mt := baseType(mimeType)
	if mt == "" {
		mt = MIMEBinary
	}
	span.SetAttributes(
		attribute.String("decode.mime", mt),
		attribute.Int("decode.bytes", len(data)),
	)

	if IsText(mt) {
		span.SetAttributes(attribute.Bool("decode.local", true))
		return extractText(data), nil
	}

	text, err := d.circuitBreaker.Execute(func() (string, error) {
		return d.executeWithRetry(ctx, func() (string, error) {
			return d.convert(ctx, data, mt)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", d.classify(err, mt)
	}

	span.SetAttributes(attribute.Bool("success", true), attribute.Int("decode.chars", len(text)))
	return text, nil
}

// convert performs a single request to the conversion service
func (d *RemoteDecoder) convert(ctx context.Context, data []byte, mimeType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, d.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", mimeType)
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read conversion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &statusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return strings.ToValidUTF8(string(body), "�"), nil
}

// executeWithRetry retries fn with exponential backoff and jitter
func (d *RemoteDecoder) executeWithRetry(ctx context.Context, fn func() (string, error)) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		if attempt > 0 {
			d.logger.Warn("Retrying document conversion",
				"attempt", attempt,
				"max_retries", d.maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(d.backoff(attempt)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				d.logger.Info("Document conversion succeeded after retry",
					"successful_attempt", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			d.logger.Debug("Error is not retryable, stopping retry attempts", "error", err.Error())
			break
		}
	}

	return "", lastErr
}

// backoff returns the delay before the given retry attempt
func (d *RemoteDecoder) backoff(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * d.retryBackoff
	jitter := time.Duration(0)
	if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(baseDelay+jitter, maxBackoff)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var statusErr *statusError
	if stderrors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// classify maps a conversion failure to an AppError
func (d *RemoteDecoder) classify(err error, mimeType string) error {
	var appErr *errors.AppError

	var statusErr *statusError
	switch {
	case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
		appErr = errors.NewDecodeError(errors.ErrCodeDecoderUnavailable, "Document conversion service unavailable", err)
	case stderrors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnsupportedMediaType:
		appErr = errors.NewDecodeError(errors.ErrCodeUnsupportedMIME, "Unsupported document type: "+mimeType, err)
	default:
		appErr = errors.NewDecodeError(errors.ErrCodeDecodeFailed, "Failed to convert document", err)
	}

	appErr = appErr.WithContext("mime", mimeType)
	d.logger.LogError(appErr, "Remote decode failed", "endpoint", d.endpoint)
	return appErr
}

// GetStats returns circuit breaker statistics
func (d *RemoteDecoder) GetStats() map[string]any {
	return d.circuitBreaker.GetStats()
}

// IsHealthy returns true unless the circuit breaker has tripped
func (d *RemoteDecoder) IsHealthy() bool {
	return d.circuitBreaker.IsHealthy()
}
