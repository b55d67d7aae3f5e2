package server

import (
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"resumeparser/internal/errors"
	"resumeparser/internal/service"
	"resumeparser/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// uploadField is the multipart field holding the resume
const uploadField = "file"

// multipartMemory is how much of an upload ParseMultipartForm keeps in memory
const multipartMemory = 8 << 20

// createParseHandler handles POST /parse: decode an uploaded document and
// return the parsed resume
func (s *Server) createParseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.Observability.Tracer("resumeparser.api").Start(r.Context(), "api.parse")
		defer span.End()

		input, status, err := s.readUpload(r)
		if err != nil {
			failSpan(span, err, "validation")
			s.Logger.Info("Rejected upload",
				"reason", err.Error(),
				"status", status,
				"request_id", requestIDFromContext(ctx))
			if status == http.StatusRequestEntityTooLarge {
				writeErrorResponse(w, "File too large",
					fmt.Sprintf("Maximum upload size is %d bytes", s.MaxRequestSize), status)
				return
			}
			writeErrorResponse(w, "Invalid upload", err.Error(), status)
			return
		}

		span.SetAttributes(
			attribute.String("document.filename", input.Filename),
			attribute.Int("document.size", len(input.Data)),
		)

		result, err := s.Service.ParseFile(ctx, service.SourceFile, input)
		if err != nil {
			if errors.CodeOf(err) == errors.ErrCodeFileTooLarge {
				failSpan(span, err, "validation")
				writeErrorResponse(w, "File too large",
					fmt.Sprintf("Maximum upload size is %d bytes", s.MaxRequestSize), http.StatusRequestEntityTooLarge)
				return
			}

			failSpan(span, err, "decode")
			s.Logger.LogError(err, "Failed to parse uploaded file",
				"filename", input.Filename,
				"request_id", requestIDFromContext(ctx))
			writeErrorResponse(w, "Failed to parse file", "The document could not be read", http.StatusInternalServerError)
			return
		}

		span.SetAttributes(
			attribute.String("document.mime", result.MIMEType),
			attribute.Int("resume.experiences", len(result.Data.Experiences)),
		)
		writeJSON(w, http.StatusOK, result.Data)
	}
}

// createParseTextHandler handles POST /parse/text: parse already-decoded text
func (s *Server) createParseTextHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.Observability.Tracer("resumeparser.api").Start(r.Context(), "api.parse_text")
		defer span.End()

		var req types.ParseTextInput
		if err := parseJSONRequest(r, &req); err != nil {
			failSpan(span, err, "validation")
			var maxBytesErr *http.MaxBytesError
			if stderrors.As(err, &maxBytesErr) {
				writeErrorResponse(w, "Request too large", err.Error(), http.StatusRequestEntityTooLarge)
				return
			}
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Text) == "" {
			err := fmt.Errorf("missing text")
			failSpan(span, err, "validation")
			writeErrorResponse(w, "Missing text", "text field is required", http.StatusBadRequest)
			return
		}

		result := s.Service.ParseText(ctx, service.SourceText, req.Text)
		span.SetAttributes(attribute.Int("resume.experiences", len(result.Data.Experiences)))
		writeJSON(w, http.StatusOK, result.Data)
	}
}

// readUpload extracts the single resume file from a multipart request. The
// returned status is meaningful only when err is non-nil.
func (s *Server) readUpload(r *http.Request) (types.ParseFileInput, int, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			return types.ParseFileInput{}, http.StatusRequestEntityTooLarge, err
		}
		return types.ParseFileInput{}, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) {
			return types.ParseFileInput{}, http.StatusBadRequest, fmt.Errorf("multipart field %q is required", uploadField)
		}
		return types.ParseFileInput{}, http.StatusBadRequest, fmt.Errorf("invalid file field: %w", err)
	}
	defer func() { _ = file.Close() }()

	if s.MaxRequestSize > 0 && header.Size > s.MaxRequestSize {
		return types.ParseFileInput{}, http.StatusRequestEntityTooLarge,
			fmt.Errorf("file is %d bytes", header.Size)
	}

	data, err := readPart(file, s.MaxRequestSize)
	if err != nil {
		if isTooLarge(err) {
			return types.ParseFileInput{}, http.StatusRequestEntityTooLarge, err
		}
		return types.ParseFileInput{}, http.StatusBadRequest, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return types.ParseFileInput{}, http.StatusBadRequest, fmt.Errorf("uploaded file is empty")
	}

	return types.ParseFileInput{
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
	}, 0, nil
}

// readPart reads at most limit bytes of an uploaded part
func readPart(file multipart.File, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(file)
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, &http.MaxBytesError{Limit: limit}
	}
	return data, nil
}

func isTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) || stderrors.Is(err, multipart.ErrMessageTooLarge) {
		return true
	}
	// some multipart paths flatten the MaxBytesReader error into text
	return strings.Contains(err.Error(), "request body too large")
}

func failSpan(span trace.Span, err error, errorType string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, errorType)
	span.SetAttributes(attribute.String("error.type", errorType))
}
