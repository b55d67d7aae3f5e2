package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resumeparser/internal/config"
	"resumeparser/internal/decode"
	"resumeparser/internal/errors"
	"resumeparser/internal/parser"
	"resumeparser/internal/service"
	"resumeparser/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `John Smith
john.smith@example.com
+1 555 123 4567

Work Experience
Backend Developer
Globex Inc
Jan 2018 - Mar 2021
Maintained the order pipeline`

type stubDecoder struct {
	decode func(ctx context.Context, data []byte, mimeType string) (string, error)
}

func (d stubDecoder) Decode(ctx context.Context, data []byte, mimeType string) (string, error) {
	return d.decode(ctx, data, mimeType)
}

func (d stubDecoder) Name() string { return "stub" }

func newTestServer(t *testing.T, decoder decode.Decoder, mutate func(*ServerConfig)) *Server {
	t.Helper()
	logger := errors.Discard()
	if decoder == nil {
		decoder = decode.NewLocalDecoder(logger)
	}

	cfg := ServerConfig{
		Host:           "127.0.0.1",
		Port:           "0",
		Version:        "test",
		MaxRequestSize: 1024,
		RateLimit:      &config.RateLimitConfig{},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	svc := service.New(decoder, parser.New(parser.DefaultOptions(), logger), logger,
		service.WithMaxFileSize(cfg.MaxRequestSize))
	s := NewServer(&config.Config{}, cfg, svc, nil, logger)
	t.Cleanup(s.cleanupRateLimiter)
	return s
}

func multipartBody(t *testing.T, field, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &body, mw.FormDataContentType()
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestParseHandler(t *testing.T) {
	s := newTestServer(t, nil, nil)
	body, contentType := multipartBody(t, "file", "john.txt", "text/plain", []byte(sampleResume))

	req := httptest.NewRequest(http.MethodPost, "/parse", body)
	req.Header.Set("Content-Type", contentType)
	rec := do(s, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var data types.ParsedResumeData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, "John Smith", data.PersonalInfo.Name)
	assert.Equal(t, "john.smith@example.com", data.PersonalInfo.Email)
	require.Len(t, data.Experiences, 1)
	assert.Equal(t, "Backend Developer", data.Experiences[0].Title)
	assert.Equal(t, "Globex Inc", data.Experiences[0].Company)
}

func TestParseHandler_Rejections(t *testing.T) {
	s := newTestServer(t, nil, nil)

	t.Run("missing file field", func(t *testing.T) {
		body, contentType := multipartBody(t, "resume", "john.txt", "text/plain", []byte(sampleResume))
		req := httptest.NewRequest(http.MethodPost, "/parse", body)
		req.Header.Set("Content-Type", contentType)
		rec := do(s, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, `"file" is required`)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader("hello"))
		req.Header.Set("Content-Type", "text/plain")
		rec := do(s, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid upload", decodeError(t, rec).Error)
	})

	t.Run("empty file", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "empty.txt", "text/plain", nil)
		req := httptest.NewRequest(http.MethodPost, "/parse", body)
		req.Header.Set("Content-Type", contentType)
		rec := do(s, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("file too large", func(t *testing.T) {
		body, contentType := multipartBody(t, "file", "big.txt", "text/plain", bytes.Repeat([]byte("a"), 4096))
		req := httptest.NewRequest(http.MethodPost, "/parse", body)
		req.Header.Set("Content-Type", contentType)
		rec := do(s, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "File too large", decodeError(t, rec).Error)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := do(s, httptest.NewRequest(http.MethodGet, "/parse", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestParseHandler_DecodeFailureIsGeneric(t *testing.T) {
	decoder := stubDecoder{decode: func(context.Context, []byte, string) (string, error) {
		return "", errors.NewDecodeError(errors.ErrCodeDecodeFailed, "xref table at /srv/uploads/secret is corrupt", nil)
	}}
	s := newTestServer(t, decoder, nil)

	body, contentType := multipartBody(t, "file", "cv.pdf", "application/pdf", []byte("%PDF-1.4 broken"))
	req := httptest.NewRequest(http.MethodPost, "/parse", body)
	req.Header.Set("Content-Type", contentType)
	rec := do(s, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "Failed to parse file", resp.Error)
	assert.NotContains(t, rec.Body.String(), "/srv/uploads")
}

func TestRecoveryMiddleware(t *testing.T) {
	decoder := stubDecoder{decode: func(context.Context, []byte, string) (string, error) {
		panic("decoder exploded at 0xdeadbeef")
	}}
	s := newTestServer(t, decoder, nil)

	body, contentType := multipartBody(t, "file", "cv.pdf", "application/pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/parse", body)
	req.Header.Set("Content-Type", contentType)
	rec := do(s, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeError(t, rec).Error)
	assert.NotContains(t, rec.Body.String(), "deadbeef")
}

func TestParseTextHandler(t *testing.T) {
	s := newTestServer(t, nil, nil)

	t.Run("parses text", func(t *testing.T) {
		payload, err := json.Marshal(types.ParseTextInput{Text: sampleResume})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/parse/text", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := do(s, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var data types.ParsedResumeData
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
		assert.Equal(t, "John Smith", data.PersonalInfo.Name)
		assert.Equal(t, parser.PlaceholderSkills, data.Skills)
	})

	t.Run("blank text", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/parse/text", strings.NewReader(`{"text":"  "}`))
		req.Header.Set("Content-Type", "application/json")
		rec := do(s, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing text", decodeError(t, rec).Error)
	})

	t.Run("wrong content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/parse/text", strings.NewReader(`{"text":"x"}`))
		req.Header.Set("Content-Type", "text/plain")
		rec := do(s, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/parse/text", strings.NewReader(`{"text":`))
		req.Header.Set("Content-Type", "application/json")
		rec := do(s, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", decodeError(t, rec).Error)
	})
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t, nil, func(cfg *ServerConfig) {
		cfg.APIKeys = []string{"secret-key-123", ""}
	})

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/parse/text", strings.NewReader(`{"text":"Jane Doe"}`))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	rec := do(s, newReq())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing API key", decodeError(t, rec).Error)

	req := newReq()
	req.Header.Set("X-API-Key", "wrong")
	rec = do(s, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid API key", decodeError(t, rec).Error)

	req = newReq()
	req.Header.Set("X-API-Key", "secret-key-123")
	assert.Equal(t, http.StatusOK, do(s, req).Code)

	req = newReq()
	req.Header.Set("Authorization", "Bearer secret-key-123")
	assert.Equal(t, http.StatusOK, do(s, req).Code)

	// health stays public
	assert.Equal(t, http.StatusOK, do(s, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	s := newTestServer(t, nil, func(cfg *ServerConfig) {
		cfg.RateLimit = &config.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 1,
			BurstCapacity:  2,
			ByIP:           true,
		}
	})

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/parse/text", strings.NewReader(`{"text":"Jane Doe"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = ip + ":40000"
		return do(s, req).Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))

	stats := s.RateLimiter.GetStats()
	assert.Equal(t, 2, stats["active_limiters"])
	assert.Equal(t, int64(1), stats["rejected"])
}

func TestRequestIDMiddleware(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "7b0f6a4e-2c1d-4d8e-9f3a-1b2c3d4e5f60")
	rec = do(s, req)
	assert.Equal(t, "7b0f6a4e-2c1d-4d8e-9f3a-1b2c3d4e5f60", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "not a uuid\r\n")
	rec = do(s, req)
	assert.NotEqual(t, "not a uuid\r\n", rec.Header().Get(RequestIDHeader))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestHealthAndStats(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "local", health["decoder"].(map[string]any)["name"])

	rec = do(s, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, float64(1024), stats["server"].(map[string]any)["max_request_size_bytes"])
	assert.Equal(t, false, stats["rate_limiting"].(map[string]any)["enabled"])
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "garbage, 203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", getClientIP(req))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "abcdefgh****", maskAPIKey("abcdefghijkl"))
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	assert.NoError(t, <-done)
}

func TestWriteServerInfo(t *testing.T) {
	s := newTestServer(t, nil, func(cfg *ServerConfig) {
		cfg.APIKeys = []string{"k1", "k2"}
		cfg.RateLimit = &config.RateLimitConfig{Enabled: true, RequestsPerMin: 30, BurstCapacity: 5, ByAPIKey: true, ByIP: true}
	})

	var out bytes.Buffer
	s.writeServerInfo(&out)

	assert.Contains(t, out.String(), "POST  /parse")
	assert.Contains(t, out.String(), "API authentication: ENABLED (2 keys configured)")
	assert.Contains(t, out.String(), "Rate limiting: ENABLED (30 requests/min, burst: 5)")
	assert.Contains(t, out.String(), "falling back to client IP")
}
