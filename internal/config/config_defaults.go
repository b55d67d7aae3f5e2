package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "yaml", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 5*1024*1024) // 5MB

	// Parser Configuration
	v.SetDefault("parser.maxInputBytes", 1024*1024)
	v.SetDefault("parser.maxLineLength", 500)

	// Decoder Configuration
	v.SetDefault("decoder.provider", "local") // local, remote
	v.SetDefault("decoder.endpoint", "")
	v.SetDefault("decoder.token", "")
	v.SetDefault("decoder.timeout", 30*time.Second)
	v.SetDefault("decoder.maxRetries", 2)
	v.SetDefault("decoder.retryBackoff", time.Second)
	v.SetDefault("decoder.circuitBreaker.enabled", true)
	v.SetDefault("decoder.circuitBreaker.maxRequests", 3)
	v.SetDefault("decoder.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("decoder.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("decoder.circuitBreaker.minRequests", 3)
	v.SetDefault("decoder.circuitBreaker.failureThreshold", 0.6)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)

	// TLS Configuration defaults
	v.SetDefault("server.tls.mode", "disabled") // disabled, server, mutual
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.caFile", "")
	v.SetDefault("server.tls.certContent", "")
	v.SetDefault("server.tls.keyContent", "")
	v.SetDefault("server.tls.caContent", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.clientAuthPolicy", "require") // require, request, verify

	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})

	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.decoderToken", "")
	v.SetDefault("vault.secrets.tlsCerts", "")

	// Inbox Configuration
	v.SetDefault("inbox.debounceDelay", 500*time.Millisecond)
	v.SetDefault("inbox.extensions", []string{".pdf", ".docx", ".doc", ".txt", ".md"})

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumeparser")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	v.SetDefault("observability.healthCheck.timeout", 5*time.Second)
}
