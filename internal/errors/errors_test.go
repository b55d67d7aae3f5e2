package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewValidationError(ErrCodeInvalidFormat, "bad format", nil),
			expected: "INVALID_FORMAT: bad format",
		},
		{
			name:     "with cause",
			err:      NewDecodeError(ErrCodeDecodeFailed, "failed to decode document", io.ErrUnexpectedEOF),
			expected: "DECODE_FAILED: failed to decode document (caused by: unexpected EOF)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_UnwrapAndType(t *testing.T) {
	err := NewDecodeError(ErrCodeUnsupportedMIME, "unsupported", io.EOF)
	wrapped := fmt.Errorf("handling upload: %w", err)

	assert.ErrorIs(t, wrapped, io.EOF)
	assert.True(t, IsType(wrapped, ErrorTypeDecode))
	assert.False(t, IsType(wrapped, ErrorTypeIO))
	assert.Equal(t, ErrCodeUnsupportedMIME, CodeOf(wrapped))
	assert.Empty(t, CodeOf(io.EOF))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewIOError(ErrCodeFileNotFound, "missing", nil).
		WithContext("file", "cv.pdf").
		WithContext("size", 10)

	assert.Equal(t, "cv.pdf", err.Context["file"])
	assert.Equal(t, 10, err.Context["size"])
}

func TestNew_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}

	_, err := New("verbose")
	assert.Error(t, err)
}

func TestLogger_LogErrorFlattensAppError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelDebug)

	appErr := NewDecodeError(ErrCodeDecodeFailed, "pdf reader failed", nil).WithContext("mime", "application/pdf")
	logger.LogError(fmt.Errorf("wrapped: %w", appErr), "Decode failed", "request_id", "abc")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Decode failed", record["msg"])
	assert.Equal(t, "decode", record["error_type"])
	assert.Equal(t, ErrCodeDecodeFailed, record["error_code"])
	assert.Equal(t, "application/pdf", record["mime"])
	assert.Equal(t, "abc", record["request_id"])
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelInfo).With("component", "inbox")
	logger.Info("started")
	logger.Debug("hidden")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "inbox", record["component"])
	assert.NotContains(t, buf.String(), "hidden")
}
