package common

import (
	"fmt"
	"slices"

	"resumeparser/internal/decode"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ValidateMIMEOverride accepts an empty override or one of the document types
// the decoders understand
func ValidateMIMEOverride(mimeType string) error {
	switch mimeType {
	case "", decode.MIMEPDF, decode.MIMEDOCX, decode.MIMEDOC, decode.MIMEText, decode.MIMEMarkdown:
		return nil
	}
	return fmt.Errorf("unsupported MIME type '%s'. Supported types: %v", mimeType,
		[]string{decode.MIMEPDF, decode.MIMEDOCX, decode.MIMEDOC, decode.MIMEText, decode.MIMEMarkdown})
}
