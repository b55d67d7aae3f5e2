package cli

import (
	"context"
	"fmt"
	"io"

	"resumeparser/internal/config"
	"resumeparser/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "resumeparser",
	Short: "Extract structured profiles from resumes",
	Long: `Resumeparser reads resumes (PDF, DOCX, DOC, plain text or Markdown) and
extracts a structured profile: name, contact details and work experience.

It runs as a one-shot command, as an HTTP service, or as a watcher that
parses every document dropped into a directory.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./config.yaml, $HOME/.resumeparser, /etc/resumeparser)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the command line with args
func Execute(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// loadRuntime loads configuration and the logger and attaches them to the
// command context
func loadRuntime(cmd *cobra.Command, args []string) error {
	if cmd.Name() == versionCmd.Name() {
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}
	// Logs go to stderr so stdout carries only command output
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.App.LogLevel)
	if err != nil {
		return err
	}

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return fmt.Errorf("failed to load secrets from vault: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	cmd.SetContext(ctx)

	logger.Debug("Starting resumeparser",
		"command", cmd.Name(),
		"version", Version,
		"log_level", cfg.App.LogLevel,
		"decoder", cfg.Decoder.Provider)
	return nil
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadConfigFile(configFile)
	}
	return config.LoadConfig()
}

func newLogger(w io.Writer, level string) (*errors.Logger, error) {
	slogLevel, err := errors.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return errors.NewLoggerTo(w, slogLevel), nil
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}
