// Package decode turns uploaded documents into plain text for the parser.
package decode

import (
	"context"
	"fmt"

	"resumeparser/internal/config"
	"resumeparser/internal/errors"
)

// Decoder converts a document's bytes into plain text
type Decoder interface {
	Decode(ctx context.Context, data []byte, mimeType string) (string, error)
	Name() string
}

// Supported document MIME types
const (
	MIMEPDF      = "application/pdf"
	MIMEDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEDOC      = "application/msword"
	MIMEText     = "text/plain"
	MIMEMarkdown = "text/markdown"
	MIMEBinary   = "application/octet-stream"
)

// New creates the decoder selected by configuration
func New(cfg *config.DecoderConfig, logger *errors.Logger) (Decoder, error) {
	if logger == nil {
		logger = errors.Discard()
	}

	logger.Debug("Initializing decoder",
		"provider", cfg.Provider,
		"endpoint", cfg.Endpoint,
		"timeout", cfg.Timeout,
		"max_retries", cfg.MaxRetries)

	switch cfg.Provider {
	case "", "local":
		return NewLocalDecoder(logger), nil
	case "remote":
		return NewRemoteDecoder(cfg, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported decoder provider: %s", cfg.Provider), nil)
	}
}

// Stats reports circuit breaker statistics for decoders that have one
func Stats(d Decoder) map[string]any {
	if r, ok := d.(*RemoteDecoder); ok {
		return r.GetStats()
	}
	return map[string]any{"enabled": false}
}

// Healthy reports whether d is currently accepting work
func Healthy(d Decoder) bool {
	if r, ok := d.(*RemoteDecoder); ok {
		return r.IsHealthy()
	}
	return true
}
