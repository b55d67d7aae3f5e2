package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultDocumentExtensions are the resume file types read by default
var DefaultDocumentExtensions = []string{".pdf", ".docx", ".doc", ".txt", ".md"}

// ValidateInputFile checks if a file exists, is readable and is not larger
// than maxSize bytes. A zero maxSize disables the size check.
func ValidateInputFile(filename string, maxSize int64) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filename)
		}
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	if maxSize > 0 && info.Size() > maxSize {
		return fmt.Errorf("file %s is %s, larger than the %s limit",
			filename, FormatFileSize(info.Size()), FormatFileSize(maxSize))
	}

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", filename, err)
	}

	return nil
}

// ValidateOutputFile checks if the output file path is valid
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// GetFileExtension returns the file extension in lowercase
func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsDocumentFile reports whether filename has one of the given extensions.
// Nil extensions means DefaultDocumentExtensions.
func IsDocumentFile(filename string, extensions []string) bool {
	if extensions == nil {
		extensions = DefaultDocumentExtensions
	}
	return slices.Contains(extensions, GetFileExtension(filename))
}

// IsHiddenOrTemp reports editor swap files, lock files and dotfiles
func IsHiddenOrTemp(filename string) bool {
	base := filepath.Base(filename)
	return strings.HasPrefix(base, ".") ||
		strings.HasPrefix(base, "~$") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".tmp")
}

// FormatExtension returns the file extension used for an output format
func FormatExtension(format string) string {
	switch format {
	case "markdown":
		return ".md"
	case "text":
		return ".txt"
	case "yaml":
		return ".yaml"
	default:
		return ".json"
	}
}

// OutputPath places the result for input inside dir, replacing the extension
func OutputPath(dir, input, format string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, name+FormatExtension(format))
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
