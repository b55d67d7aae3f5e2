package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"resumeparser/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address" validate:"required_if=Enabled true"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets defines where to find secrets in Vault. Paths point at a
// KVv2 data path, e.g. "secret/data/resumeparser/api-keys".
type VaultSecrets struct {
	// Comma-separated server API keys under the "keys" field
	APIKeys string `mapstructure:"apiKeys"`
	// Bearer token for the remote decoder under the "token" field
	DecoderToken string `mapstructure:"decoderToken"`
	// PEM content under the "cert", "key" and "ca" fields
	TLSCerts string `mapstructure:"tlsCerts"`
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *errors.Logger
}

// VaultSecret represents a secret read from Vault's KVv2 engine.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// NewVaultClient creates a new Vault client from configuration.
// It returns nil when Vault is disabled.
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !config.Enabled {
		if logger != nil {
			logger.Debug("Vault integration disabled")
		}
		return nil, nil
	}

	if logger != nil {
		logger.Debug("Initializing Vault client",
			"address", config.Address,
			"namespace", config.Namespace,
			"token_file", config.TokenFile,
			"has_token", config.Token != "")
	}

	vaultConfig := api.DefaultConfig()
	if config.Address != "" {
		vaultConfig.Address = config.Address
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	if logger != nil {
		logger.Info("Successfully connected to Vault",
			"address", config.Address,
			"version", health.Version,
			"sealed", health.Sealed)
	}

	return &VaultClient{client: client, config: config, logger: logger}, nil
}

// resolveVaultToken resolves the Vault token from config or file
func resolveVaultToken(config VaultConfig) (string, error) {
	token := config.Token

	if token == "" && config.TokenFile != "" {
		tokenBytes, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(tokenBytes))
	}

	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}

	return token, nil
}

// GetSecretV2 retrieves a secret from a Vault KVv2 store.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	if vc.logger != nil {
		vc.logger.Debug("Reading secret from Vault", "path", path)
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	return decodeSecretV2(secret.Data, path)
}

// decodeSecretV2 unpacks the data and metadata.version fields of a KVv2 read
func decodeSecretV2(raw map[string]any, path string) (*VaultSecret, error) {
	data, ok := raw["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}

	metadata, ok := raw["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}

	versionRaw, ok := metadata["version"]
	if !ok {
		return nil, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	}

	version, err := parseVersionValue(versionRaw, path)
	if err != nil {
		return nil, err
	}

	return &VaultSecret{Data: data, Version: version}, nil
}

// parseVersionValue parses version value from various types
func parseVersionValue(versionRaw any, path string) (int64, error) {
	switch v := versionRaw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case json.Number:
		version, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, versionRaw)
	}
}

// GetStringSecret retrieves a string value from a Vault secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	strValue, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}

	if vc.logger != nil {
		vc.logger.Debug("String secret retrieved from Vault",
			"path", path,
			"key", key,
			"masked_value", maskSecret(strValue))
	}

	return strValue, nil
}

// GetStringSliceSecret retrieves a comma-separated string as a slice from Vault
func (vc *VaultClient) GetStringSliceSecret(path, key string) ([]string, error) {
	value, err := vc.GetStringSecret(path, key)
	if err != nil {
		return nil, err
	}
	return splitAndTrim(value), nil
}

func maskSecret(value string) string {
	switch {
	case len(value) > 8:
		return value[:4] + "****" + value[len(value)-4:]
	case value != "":
		return "****"
	default:
		return ""
	}
}

// ApplyVaultSecrets loads secrets from Vault and applies them to the config
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		if logger != nil {
			logger.Debug("Vault integration disabled, skipping secret loading")
		}
		return nil
	}

	if logger != nil {
		logger.Info("Loading secrets from Vault",
			"api_keys_path", config.Vault.Secrets.APIKeys,
			"decoder_token_path", config.Vault.Secrets.DecoderToken,
			"tls_certs_path", config.Vault.Secrets.TLSCerts)
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}

	return applySecrets(client, config, logger)
}

// applySecrets loads every configured secret path with client
func applySecrets(client *VaultClient, config *Config, logger *errors.Logger) error {
	secrets := config.Vault.Secrets

	if secrets.APIKeys != "" {
		keys, err := client.GetStringSliceSecret(secrets.APIKeys, "keys")
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		if len(keys) > 0 {
			config.Server.APIKeys = keys
		}
		if logger != nil {
			logger.Info("API keys loaded from Vault", "count", len(keys))
		}
	}

	if secrets.DecoderToken != "" {
		token, err := client.GetStringSecret(secrets.DecoderToken, "token")
		if err != nil {
			return fmt.Errorf("failed to load decoder token from vault: %w", err)
		}
		if token != "" {
			config.Decoder.Token = token
		}
	}

	if secrets.TLSCerts != "" {
		tlsData, err := client.GetSecretV2(secrets.TLSCerts)
		if err != nil {
			return fmt.Errorf("failed to load TLS certificates from vault: %w", err)
		}
		loaded := applyTLSContent(&config.Server.TLS, tlsData)
		if logger != nil {
			logger.Info("TLS certificates loaded from Vault", "certificates_loaded", loaded)
		}
		if err := config.ValidateTLSConfig(); err != nil {
			return fmt.Errorf("TLS configuration error: %w", err)
		}
	}

	if logger != nil {
		logger.Info("Successfully completed applying secrets from Vault")
	}
	return nil
}

// applyTLSContent copies PEM content from a Vault secret into the TLS config.
// Content replaces file paths so the two sources never conflict.
func applyTLSContent(t *TLSConfig, secret *VaultSecret) int {
	loaded := 0
	fields := []struct {
		key     string
		content *string
		file    *string
	}{
		{"cert", &t.CertContent, &t.CertFile},
		{"key", &t.KeyContent, &t.KeyFile},
		{"ca", &t.CAContent, &t.CAFile},
	}
	for _, f := range fields {
		if content, ok := secret.Data[f.key].(string); ok && content != "" {
			*f.content = content
			*f.file = ""
			loaded++
		}
	}
	return loaded
}
