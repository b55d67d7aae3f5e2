package common

import (
	"fmt"
	"io"
	"os"

	"resumeparser/internal/errors"
	"resumeparser/internal/formatters"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
	MIMEType     string // Overrides detection for every input when set
}

// OutputHandler handles formatting and writing output
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	stdout        io.Writer
	logger        *errors.Logger
}

// NewOutputHandler creates a new output handler writing to stdout
func NewOutputHandler(logger *errors.Logger, registry *formatters.FormatterRegistry) *OutputHandler {
	if logger == nil {
		logger = errors.Discard()
	}
	if registry == nil {
		registry = formatters.NewFormatterRegistry()
	}
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger, 0, nil),
		registry:      registry,
		stdout:        os.Stdout,
		logger:        logger,
	}
}

// SetOutput redirects stdout output to w
func (oh *OutputHandler) SetOutput(w io.Writer) {
	oh.stdout = w
}

// Render formats data without writing it
func (oh *OutputHandler) Render(data any, format string) (string, error) {
	output, err := oh.registry.Format(data, format)
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", format), err)
	}
	return output, nil
}

// HandleOutput formats data and writes it to the specified output
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	output, err := oh.Render(data, config.OutputFormat)
	if err != nil {
		return err
	}

	if config.OutputFile != "" {
		if err := oh.fileProcessor.WriteFile(config.OutputFile, output); err != nil {
			return err // Error already wrapped by WriteFile
		}

		oh.logger.Info("Output written successfully",
			"file", config.OutputFile, "format", config.OutputFormat)
		return nil
	}

	if _, err := fmt.Fprintln(oh.stdout, output); err != nil {
		return errors.NewIOError("STDOUT_WRITE_FAILED", "Cannot write output", err)
	}
	return nil
}

// GetSupportedFormats returns all supported output formats
func (oh *OutputHandler) GetSupportedFormats() []string {
	return oh.registry.GetSupportedFormats()
}
