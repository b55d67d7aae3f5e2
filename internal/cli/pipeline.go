package cli

import (
	"context"
	"fmt"
	"time"

	"resumeparser/internal/config"
	"resumeparser/internal/decode"
	"resumeparser/internal/errors"
	"resumeparser/internal/observability"
	"resumeparser/internal/parser"
	"resumeparser/internal/service"
)

// newService wires the configured decoder and parser into a service.
// metrics may be nil.
func newService(cfg *config.Config, logger *errors.Logger, metrics *observability.Metrics) (*service.Service, error) {
	decoder, err := decode.New(&cfg.Decoder, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	p := parser.New(parser.Options{
		MaxInputBytes: cfg.Parser.MaxInputBytes,
		MaxLineLength: cfg.Parser.MaxLineLength,
	}, logger)

	return service.New(decoder, p, logger,
		service.WithMetrics(metrics),
		service.WithMaxFileSize(cfg.App.MaxFileSize),
	), nil
}

// startObservability initializes tracing and metrics for long-running
// commands. The returned function flushes and stops exporters.
func startObservability(cfg *config.Config, logger *errors.Logger) (*observability.ObservabilityManager, func(), error) {
	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(ctx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}
	return om, shutdown, nil
}
