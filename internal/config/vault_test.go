package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumeparser/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVault serves the health endpoint and a fixed set of KVv2 secrets.
func fakeVault(t *testing.T, token string, secrets map[string]map[string]any) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path == "/v1/sys/health" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"initialized": true,
				"sealed":      false,
				"version":     "1.15.0",
			})
			return
		}

		if r.Header.Get("X-Vault-Token") != token {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
			return
		}

		data, ok := secrets[strings.TrimPrefix(r.URL.Path, "/v1/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"data":     data,
				"metadata": map[string]any{"version": 3},
			},
		})
	}))
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(42), expected: 42},
		{name: "json number", input: json.Number("7"), expected: 7},
		{name: "string value", input: "42", expected: 42},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "invalid json number", input: json.Number("1.5"), expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "secret/data/test")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestDecodeSecretV2(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		secret, err := decodeSecretV2(map[string]any{
			"data":     map[string]any{"keys": "a,b"},
			"metadata": map[string]any{"version": "5"},
		}, "p")
		require.NoError(t, err)
		assert.Equal(t, int64(5), secret.Version)
		assert.Equal(t, "a,b", secret.Data["keys"])
	})

	t.Run("kv v1 layout", func(t *testing.T) {
		_, err := decodeSecretV2(map[string]any{"keys": "a,b"}, "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing 'data' field")
	})

	t.Run("missing version", func(t *testing.T) {
		_, err := decodeSecretV2(map[string]any{
			"data":     map[string]any{},
			"metadata": map[string]any{},
		}, "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing 'version' field")
	})
}

func TestResolveVaultToken(t *testing.T) {
	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"})
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile})
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read vault token file")
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})
}

func TestApplyTLSContent(t *testing.T) {
	tlsConfig := TLSConfig{Mode: "server", CertFile: "/old/cert.pem", KeyFile: "/old/key.pem"}
	loaded := applyTLSContent(&tlsConfig, &VaultSecret{Data: map[string]any{
		"cert": "CERT",
		"key":  "KEY",
		"ca":   "",
	}})

	assert.Equal(t, 2, loaded)
	assert.Equal(t, "CERT", tlsConfig.CertContent)
	assert.Equal(t, "KEY", tlsConfig.KeyContent)
	assert.Empty(t, tlsConfig.CertFile)
	assert.Empty(t, tlsConfig.KeyFile)
	assert.Empty(t, tlsConfig.CAContent)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "abcd****6789", maskSecret("abcdef0123456789"))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "", maskSecret(""))
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := &Config{Server: ServerConfig{APIKeys: []string{"local"}}}

	require.NoError(t, ApplyVaultSecrets(cfg, errors.Discard()))
	assert.Equal(t, []string{"local"}, cfg.Server.APIKeys)
}

func TestApplyVaultSecrets(t *testing.T) {
	server := fakeVault(t, "root-token", map[string]map[string]any{
		"secret/data/resumeparser/api-keys": {"keys": "key-one, key-two"},
		"secret/data/resumeparser/decoder":  {"token": "tika-token"},
	})
	defer server.Close()

	cfg := &Config{
		Server: ServerConfig{TLS: TLSConfig{Mode: "disabled"}},
		Vault: VaultConfig{
			Enabled: true,
			Address: server.URL,
			Token:   "root-token",
			Secrets: VaultSecrets{
				APIKeys:      "secret/data/resumeparser/api-keys",
				DecoderToken: "secret/data/resumeparser/decoder",
			},
		},
	}

	require.NoError(t, ApplyVaultSecrets(cfg, errors.Discard()))
	assert.Equal(t, []string{"key-one", "key-two"}, cfg.Server.APIKeys)
	assert.Equal(t, "tika-token", cfg.Decoder.Token)
}

func TestApplyVaultSecrets_MissingSecret(t *testing.T) {
	server := fakeVault(t, "root-token", nil)
	defer server.Close()

	cfg := &Config{
		Vault: VaultConfig{
			Enabled: true,
			Address: server.URL,
			Token:   "root-token",
			Secrets: VaultSecrets{APIKeys: "secret/data/missing"},
		},
	}

	err := ApplyVaultSecrets(cfg, errors.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load API keys from vault")
}

func TestVaultClient_GetStringSecret(t *testing.T) {
	server := fakeVault(t, "root-token", map[string]map[string]any{
		"secret/data/app": {"token": "abc", "count": 3},
	})
	defer server.Close()

	client, err := NewVaultClient(VaultConfig{Enabled: true, Address: server.URL, Token: "root-token"}, errors.Discard())
	require.NoError(t, err)

	value, err := client.GetStringSecret("secret/data/app", "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	_, err = client.GetStringSecret("secret/data/app", "absent")
	assert.ErrorContains(t, err, "not found in secret")

	_, err = client.GetStringSecret("secret/data/app", "count")
	assert.ErrorContains(t, err, "is not a string")
}

func TestNewVaultClientDisabled(t *testing.T) {
	client, err := NewVaultClient(VaultConfig{}, nil)

	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestVaultClientNil(t *testing.T) {
	var client *VaultClient

	_, err := client.GetSecretV2("secret/data/x")
	assert.ErrorContains(t, err, "vault client not initialized")
}
