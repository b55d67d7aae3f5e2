package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all custom metrics for the parser service. A zero Metrics
// records nothing.
type Metrics struct {
	ParseDuration   metric.Float64Histogram
	ParseRequests   metric.Int64Counter
	FieldsExtracted metric.Int64Counter
	Fallbacks       metric.Int64Counter
	DecodeErrors    metric.Int64Counter
	DocumentBytes   metric.Int64Histogram
	RateLimitHits   metric.Int64Counter
}

// ParseOutcome describes one finished parse for metric recording
type ParseOutcome struct {
	Source    string // "file", "text", "cli" or "inbox"
	Success   bool
	Duration  time.Duration
	Bytes     int
	Extracted []string
	Fallbacks []string
}

// NewMetrics creates every parser instrument on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.ParseDuration, err = meter.Float64Histogram(
		"resumeparser_parse_duration_seconds",
		metric.WithDescription("Time spent decoding and parsing a resume"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse duration metric: %w", err)
	}

	m.ParseRequests, err = meter.Int64Counter(
		"resumeparser_parse_requests_total",
		metric.WithDescription("Total number of parse requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse request count metric: %w", err)
	}

	m.FieldsExtracted, err = meter.Int64Counter(
		"resumeparser_fields_extracted_total",
		metric.WithDescription("Fields recovered from resume text"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fields extracted metric: %w", err)
	}

	m.Fallbacks, err = meter.Int64Counter(
		"resumeparser_fallbacks_total",
		metric.WithDescription("Fields replaced by placeholder values"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallbacks metric: %w", err)
	}

	m.DecodeErrors, err = meter.Int64Counter(
		"resumeparser_decode_errors_total",
		metric.WithDescription("Documents that could not be converted to text"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create decode error metric: %w", err)
	}

	m.DocumentBytes, err = meter.Int64Histogram(
		"resumeparser_document_bytes",
		metric.WithDescription("Size of parsed documents"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create document size metric: %w", err)
	}

	m.RateLimitHits, err = meter.Int64Counter(
		"resumeparser_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return m, nil
}

// RecordParse records duration, size and per-field counters for one parse
func (m *Metrics) RecordParse(ctx context.Context, outcome ParseOutcome) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("source", outcome.Source),
		attribute.Bool("success", outcome.Success),
	)

	if m.ParseRequests != nil {
		m.ParseRequests.Add(ctx, 1, attrs)
	}
	if m.ParseDuration != nil {
		m.ParseDuration.Record(ctx, outcome.Duration.Seconds(),
			metric.WithAttributes(attribute.String("source", outcome.Source)))
	}
	if m.DocumentBytes != nil && outcome.Bytes > 0 {
		m.DocumentBytes.Record(ctx, int64(outcome.Bytes),
			metric.WithAttributes(attribute.String("source", outcome.Source)))
	}

	if m.FieldsExtracted != nil {
		for _, field := range outcome.Extracted {
			m.FieldsExtracted.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field)))
		}
	}
	if m.Fallbacks != nil {
		for _, field := range outcome.Fallbacks {
			m.Fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field)))
		}
	}
}

// RecordDecodeError counts a document that failed to decode
func (m *Metrics) RecordDecodeError(ctx context.Context, mimeType, code string) {
	if m == nil || m.DecodeErrors == nil {
		return
	}
	m.DecodeErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mime", mimeType),
		attribute.String("code", code),
	))
}

// RecordRateLimitHit counts a rejected request
func (m *Metrics) RecordRateLimitHit(ctx context.Context, attributes ...attribute.KeyValue) {
	if m == nil || m.RateLimitHits == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attributes...))
}
