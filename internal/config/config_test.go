package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfigFile_Defaults(t *testing.T) {
	cfg, err := LoadConfigFile(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.Equal(t, []string{"json", "yaml", "text", "markdown"}, cfg.App.SupportedFormats)
	assert.Equal(t, int64(5*1024*1024), cfg.App.MaxFileSize)
	assert.Equal(t, 1024*1024, cfg.Parser.MaxInputBytes)
	assert.Equal(t, 500, cfg.Parser.MaxLineLength)
	assert.Equal(t, "local", cfg.Decoder.Provider)
	assert.Equal(t, 30*time.Second, cfg.Decoder.Timeout)
	assert.True(t, cfg.Decoder.CircuitBreaker.Enabled)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.False(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, []string{".pdf", ".docx", ".doc", ".txt", ".md"}, cfg.Inbox.Extensions)
	assert.Equal(t, "resumeparser", cfg.Observability.ServiceName)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadConfigFile_Overrides(t *testing.T) {
	path := writeConfig(t, `
app:
  logLevel: debug
  defaultFormat: yaml
decoder:
  provider: remote
  endpoint: http://tika:9998
  timeout: 10s
server:
  port: "9000"
  apiKeys: [" one ", "two"]
inbox:
  extensions: [pdf, .TXT]
`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "yaml", cfg.App.DefaultFormat)
	assert.Equal(t, "remote", cfg.Decoder.Provider)
	assert.Equal(t, "http://tika:9998", cfg.Decoder.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Decoder.Timeout)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"one", "two"}, cfg.Server.APIKeys)
	assert.Equal(t, []string{".pdf", ".txt"}, cfg.Inbox.Extensions)
	assert.True(t, cfg.Observability.ConsoleOutput, "debug logging turns on console output")
}

func TestLoadConfigFile_EnvWins(t *testing.T) {
	t.Setenv("RESUMEPARSER_SERVER_PORT", "7000")
	t.Setenv("RESUMEPARSER_PARSER_MAXLINELENGTH", "120")

	cfg, err := LoadConfigFile(writeConfig(t, "server:\n  port: \"9000\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, 120, cfg.Parser.MaxLineLength)
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		errorMsg string
	}{
		{
			name:     "remote decoder without endpoint",
			content:  "decoder:\n  provider: remote\n",
			errorMsg: "decoder endpoint is required",
		},
		{
			name:     "unknown decoder",
			content:  "decoder:\n  provider: cloud\n",
			errorMsg: "Provider",
		},
		{
			name:     "unknown log level",
			content:  "app:\n  logLevel: loud\n",
			errorMsg: "LogLevel",
		},
		{
			name:     "default format not supported",
			content:  "app:\n  defaultFormat: yaml\n  supportedFormats: [json]\n",
			errorMsg: "invalid default format: yaml",
		},
		{
			name:     "bad tls mode",
			content:  "server:\n  tls:\n    mode: sometimes\n",
			errorMsg: "invalid TLS mode",
		},
		{
			name:     "vault enabled without address",
			content:  "vault:\n  enabled: true\n",
			errorMsg: "Address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate_TLSDeferredToVault(t *testing.T) {
	cfg, err := LoadConfigFile(writeConfig(t, `
server:
  tls:
    mode: server
vault:
  enabled: true
  address: http://vault:8200
  secrets:
    tlsCerts: secret/data/resumeparser/tls
`))
	require.NoError(t, err)
	assert.Error(t, cfg.ValidateTLSConfig())
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a ,, b ,"))
	assert.Empty(t, splitAndTrim(""))
}
