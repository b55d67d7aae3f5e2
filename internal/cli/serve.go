package cli

import (
	"fmt"

	"resumeparser/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP resume parsing service",
	Long: `Start an HTTP server that parses uploaded resumes.

Available endpoints:
- POST /parse: Parse a resume uploaded as multipart field "file"
- POST /parse/text: Parse plain resume text sent as {"text": "..."}
- GET /health: Health check including decoder availability
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
}

// applyServeFlags copies explicitly set flags over the loaded configuration
func applyServeFlags(cmd *cobra.Command, targets map[string]*string) {
	for name, target := range targets {
		flag := cmd.Flags().Lookup(name)
		if flag != nil && flag.Changed {
			*target = flag.Value.String()
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	applyServeFlags(cmd, map[string]*string{
		"port":      &cfg.Server.Port,
		"host":      &cfg.Server.Host,
		"tls-mode":  &cfg.Server.TLS.Mode,
		"cert-file": &cfg.Server.TLS.CertFile,
		"key-file":  &cfg.Server.TLS.KeyFile,
		"ca-file":   &cfg.Server.TLS.CAFile,
	})

	// Validate TLS configuration after applying overrides
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, shutdown, err := startObservability(cfg, logger)
	if err != nil {
		return err
	}
	defer shutdown()

	svc, err := newService(cfg, logger, om.GetMetrics())
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg, server.NewServerConfig(cfg, Version), svc, om, logger)
	return srv.Run(cmd.Context())
}
