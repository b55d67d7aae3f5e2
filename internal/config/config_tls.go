package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	t := c.Server.TLS

	switch t.Mode {
	case "disabled":
		return nil
	case "server":
		if err := requireCertAndKey(t, "server mode"); err != nil {
			return err
		}
	case "mutual":
		if err := requireCertAndKey(t, "mutual mode"); err != nil {
			return err
		}
		if t.CAFile == "" && t.CAContent == "" {
			return fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
		}
		if t.CAFile != "" && t.CAContent != "" {
			return fmt.Errorf("cannot specify both caFile and caContent - choose one")
		}
		switch t.ClientAuthPolicy {
		case "require", "request", "verify", "":
		default:
			return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", t.ClientAuthPolicy)
		}
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", t.Mode)
	}

	switch t.MinVersion {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", t.MinVersion)
	}
}

// requireCertAndKey checks that cert and key each come from exactly one source
func requireCertAndKey(t TLSConfig, mode string) error {
	if (t.CertFile == "" && t.CertContent == "") || (t.KeyFile == "" && t.KeyContent == "") {
		return fmt.Errorf("TLS certificate and key are required for %s (provide either files or content)", mode)
	}
	if t.CertFile != "" && t.CertContent != "" {
		return fmt.Errorf("cannot specify both certFile and certContent - choose one")
	}
	if t.KeyFile != "" && t.KeyContent != "" {
		return fmt.Errorf("cannot specify both keyFile and keyContent - choose one")
	}
	return nil
}

// ServerTLSConfig builds the crypto/tls configuration for the HTTP server.
// It returns nil when TLS is disabled.
func (t TLSConfig) ServerTLSConfig() (*tls.Config, error) {
	if t.Mode == "" || t.Mode == "disabled" {
		return nil, nil
	}

	cert, err := t.loadCertificate()
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.NoClientCert,
	}
	if t.MinVersion == "1.3" {
		tlsConfig.MinVersion = tls.VersionTLS13
	}

	if t.Mode != "mutual" {
		return tlsConfig, nil
	}

	caPEM := []byte(t.CAContent)
	if len(caPEM) == 0 {
		caPEM, err = os.ReadFile(t.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("failed to append CA cert")
	}
	tlsConfig.ClientCAs = pool

	switch t.ClientAuthPolicy {
	case "request":
		tlsConfig.ClientAuth = tls.RequestClientCert
	case "verify":
		tlsConfig.ClientAuth = tls.VerifyClientCertIfGiven
	default:
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return tlsConfig, nil
}

// loadCertificate loads the server key pair from content or files
func (t TLSConfig) loadCertificate() (tls.Certificate, error) {
	if t.CertContent != "" && t.KeyContent != "" {
		cert, err := tls.X509KeyPair([]byte(t.CertContent), []byte(t.KeyContent))
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from content: %w", err)
		}
		return cert, nil
	}

	if t.CertFile != "" && t.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from files: %w", err)
		}
		return cert, nil
	}

	return tls.Certificate{}, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
}
