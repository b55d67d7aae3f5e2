// Package service joins document decoding and resume parsing into one
// instrumented pipeline shared by the CLI, the HTTP server and the inbox.
package service

import (
	"context"
	"fmt"
	"time"

	"resumeparser/internal/decode"
	"resumeparser/internal/errors"
	"resumeparser/internal/observability"
	"resumeparser/internal/parser"
	"resumeparser/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Parse sources used for metrics and logs
const (
	SourceFile  = "file"
	SourceText  = "text"
	SourceCLI   = "cli"
	SourceInbox = "inbox"
)

// Result is the outcome of one parse
type Result struct {
	Data     types.ParsedResumeData
	Report   parser.Report
	MIMEType string
}

// Service handles resume decoding and parsing
type Service struct {
	decoder     decode.Decoder
	parser      *parser.Parser
	metrics     *observability.Metrics
	logger      *errors.Logger
	maxFileSize int64
}

// Option configures a Service
type Option func(*Service)

// WithMetrics records parse metrics on m
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithMaxFileSize rejects documents larger than n bytes. Zero means no limit.
func WithMaxFileSize(n int64) Option {
	return func(s *Service) { s.maxFileSize = n }
}

// New creates a service around a decoder and a parser
func New(decoder decode.Decoder, p *parser.Parser, logger *errors.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = errors.Discard()
	}
	s := &Service{
		decoder: decoder,
		parser:  p,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Decoder returns the decoder used for documents
func (s *Service) Decoder() decode.Decoder {
	return s.decoder
}

// Parser returns the resume parser
func (s *Service) Parser() *parser.Parser {
	return s.parser
}

// ParseText parses already-decoded text. It never fails.
func (s *Service) ParseText(ctx context.Context, source, text string) Result {
	start := time.Now()
	data, report := s.parse(ctx, text)

	s.metrics.RecordParse(ctx, observability.ParseOutcome{
		Source:    source,
		Success:   true,
		Duration:  time.Since(start),
		Bytes:     len(text),
		Extracted: report.Extracted(),
		Fallbacks: report.Fallbacks(),
	})

	return Result{Data: data, Report: report, MIMEType: decode.MIMEText}
}

// ParseFile decodes a document and parses the resulting text
func (s *Service) ParseFile(ctx context.Context, source string, input types.ParseFileInput) (Result, error) {
	start := time.Now()
	mimeType := decode.DetectMIME(input.Data, input.MIMEType, input.Filename)

	fail := func(err error) (Result, error) {
		s.metrics.RecordParse(ctx, observability.ParseOutcome{
			Source:   source,
			Success:  false,
			Duration: time.Since(start),
			Bytes:    len(input.Data),
		})
		return Result{MIMEType: mimeType}, err
	}

	if s.maxFileSize > 0 && int64(len(input.Data)) > s.maxFileSize {
		return fail(errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("File exceeds the %d byte limit", s.maxFileSize), nil).
			WithContext("filename", input.Filename).
			WithContext("size", len(input.Data)))
	}

	text, err := s.decoder.Decode(ctx, input.Data, mimeType)
	if err != nil {
		s.metrics.RecordDecodeError(ctx, mimeType, errors.CodeOf(err))
		s.logger.LogError(err, "Failed to decode document",
			"filename", input.Filename,
			"mime", mimeType,
			"decoder", s.decoder.Name())
		return fail(err)
	}

	data, report := s.parse(ctx, text)

	s.metrics.RecordParse(ctx, observability.ParseOutcome{
		Source:    source,
		Success:   true,
		Duration:  time.Since(start),
		Bytes:     len(input.Data),
		Extracted: report.Extracted(),
		Fallbacks: report.Fallbacks(),
	})

	s.logger.Info("Resume parsed",
		"source", source,
		"filename", input.Filename,
		"mime", mimeType,
		"experiences", report.ExperienceCount,
		"fallbacks", report.Fallbacks(),
		"duration_ms", time.Since(start).Milliseconds())

	return Result{Data: data, Report: report, MIMEType: mimeType}, nil
}

func (s *Service) parse(ctx context.Context, text string) (types.ParsedResumeData, parser.Report) {
	_, span := otel.Tracer("resumeparser.parser").Start(ctx, "parser.parse")
	defer span.End()

	data, report := s.parser.ParseWithReport(text)

	span.SetAttributes(
		attribute.Int("parser.input_bytes", report.InputBytes),
		attribute.Bool("parser.truncated", report.Truncated),
		attribute.Bool("parser.name_found", report.NameFound),
		attribute.Bool("parser.section_found", report.SectionFound),
		attribute.Int("parser.experiences", report.ExperienceCount),
	)
	return data, report
}
