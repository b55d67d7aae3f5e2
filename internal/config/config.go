package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by the configuration
const EnvPrefix = "RESUMEPARSER"

// Config holds all configuration for the application
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Parser        ParserConfig        `mapstructure:"parser"`
	Decoder       DecoderConfig       `mapstructure:"decoder"`
	Server        ServerConfig        `mapstructure:"server"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Inbox         InboxConfig         `mapstructure:"inbox"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel" validate:"oneof=debug info warn error"`
	DefaultFormat    string   `mapstructure:"defaultFormat" validate:"required"`
	SupportedFormats []string `mapstructure:"supportedFormats" validate:"min=1,dive,oneof=json yaml text markdown"`
	MaxFileSize      int64    `mapstructure:"maxFileSize" validate:"gt=0"` // Upload ceiling in bytes
}

// ParserConfig bounds the work done on a single document
type ParserConfig struct {
	MaxInputBytes int `mapstructure:"maxInputBytes" validate:"gte=0"`
	MaxLineLength int `mapstructure:"maxLineLength" validate:"gte=0"`
}

// DecoderConfig selects and tunes the document-to-text decoder
type DecoderConfig struct {
	Provider       string               `mapstructure:"provider" validate:"oneof=local remote"`
	Endpoint       string               `mapstructure:"endpoint" validate:"omitempty,url"` // Tika-compatible server, remote only
	Token          string               `mapstructure:"token"`
	Timeout        time.Duration        `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries     int                  `mapstructure:"maxRetries" validate:"gte=0,lte=10"`
	RetryBackoff   time.Duration        `mapstructure:"retryBackoff" validate:"gte=0"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`                                    // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`                                // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`                                   // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`                                    // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`                                // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold" validate:"gte=0,lte=1"` // Failure ratio threshold (0.0-1.0)
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	TLS TLSConfig `mapstructure:"tls"`

	// Valid API keys; empty disables authentication
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds TLS/mTLS configuration
type TLSConfig struct {
	Mode     string `mapstructure:"mode"`     // "disabled", "server", "mutual"
	CertFile string `mapstructure:"certFile"` // PEM
	KeyFile  string `mapstructure:"keyFile"`  // PEM
	CAFile   string `mapstructure:"caFile"`   // PEM, mutual mode only

	// Loaded from Vault instead of files
	CertContent string `mapstructure:"certContent"`
	KeyContent  string `mapstructure:"keyContent"`
	CAContent   string `mapstructure:"caContent"`

	MinVersion       string `mapstructure:"minVersion"`       // "1.2", "1.3"
	ClientAuthPolicy string `mapstructure:"clientAuthPolicy"` // "require", "request", "verify"
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin" validate:"gte=0"`
	BurstCapacity  int           `mapstructure:"burstCapacity" validate:"gte=0"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"`
}

// InboxConfig holds configuration for the watched upload directory
type InboxConfig struct {
	DebounceDelay time.Duration `mapstructure:"debounceDelay" validate:"gte=0"`
	Extensions    []string      `mapstructure:"extensions" validate:"min=1,dive,startswith=."`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	ServiceName     string            `mapstructure:"serviceName" validate:"required"`
	ServiceVersion  string            `mapstructure:"serviceVersion"`
	ServiceInstance string            `mapstructure:"serviceInstance"`
	ConsoleOutput   bool              `mapstructure:"consoleOutput"`
	Tracing         TracingConfig     `mapstructure:"tracing"`
	Metrics         MetricsConfig     `mapstructure:"metrics"`
	Prometheus      PrometheusConfig  `mapstructure:"prometheus"`
	OTLP            OTLPConfig        `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate" validate:"gte=0,lte=1"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig loads configuration from defaults, a config file in the
// standard search paths and environment variables.
func LoadConfig() (*Config, error) {
	return load("")
}

// LoadConfigFile is LoadConfig with an explicit config file path.
func LoadConfigFile(path string) (*Config, error) {
	return load(path)
}

func load(configFile string) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	loadDotEnv()

	v := viper.New()

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Printf("[CONFIG] Configured environment variable handling with prefix '%s'", EnvPrefix)

	if configFile != "" {
		v.SetConfigFile(configFile)
		log.Printf("[CONFIG] Using explicit config file: %s", configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/resumeparser/")
		v.AddConfigPath("$HOME/.resumeparser")
		v.AddConfigPath(".")
		log.Println("[CONFIG] Configured config file search paths: /etc/resumeparser/, $HOME/.resumeparser, .")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	log.Println("[CONFIG] Successfully unmarshaled configuration")

	config.applyFallbacks()
	log.Println("[CONFIG] Applied configuration fallbacks and environment variable overrides")

	config.logConfigurationSources(configFileUsed)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// loadDotEnv loads a .env file from the working directory when present.
// Variables already set in the environment win.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("[CONFIG] Failed to load .env file: %v", err)
		return
	}
	log.Println("[CONFIG] Loaded environment variables from .env")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if c.Decoder.Provider == "remote" && c.Decoder.Endpoint == "" {
		return fmt.Errorf("decoder endpoint is required for the remote provider (set %s_DECODER_ENDPOINT)", EnvPrefix)
	}

	// Certificates stored in Vault are checked once they are loaded
	if c.tlsFromVault() {
		return nil
	}
	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

func (c *Config) tlsFromVault() bool {
	return c.Vault.Enabled && c.Vault.Secrets.TLSCerts != ""
}
