package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"resumeparser/internal/errors"
	"resumeparser/internal/types"
	"resumeparser/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger      *errors.Logger
	maxFileSize int64
	extensions  []string
}

// NewFileProcessor creates a new file processor instance. maxFileSize of zero
// disables the size check; nil extensions means the default document types.
func NewFileProcessor(logger *errors.Logger, maxFileSize int64, extensions []string) *FileProcessor {
	if logger == nil {
		logger = errors.Discard()
	}
	return &FileProcessor{logger: logger, maxFileSize: maxFileSize, extensions: extensions}
}

// ReadFile reads a document with proper error handling
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return content, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	// Write through a temp file so watchers never see a partial result
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".*.tmp")
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.WriteString(content)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr == nil {
		writeErr = os.Chmod(tmpName, 0600)
	}
	if writeErr == nil {
		writeErr = os.Rename(tmpName, filename)
	}
	if writeErr != nil {
		_ = os.Remove(tmpName)
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), writeErr)
	}

	return nil
}

// ReadDocument validates and reads one document into a parse input
func (fp *FileProcessor) ReadDocument(filename, mimeType string) (types.ParseFileInput, error) {
	if err := utils.ValidateInputFile(filename, fp.maxFileSize); err != nil {
		code := "INVALID_INPUT_FILE"
		if info, statErr := os.Stat(filename); statErr == nil && fp.maxFileSize > 0 && info.Size() > fp.maxFileSize {
			code = errors.ErrCodeFileTooLarge
		}
		return types.ParseFileInput{}, errors.NewValidationError(code,
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	if !utils.IsDocumentFile(filename, fp.extensions) {
		fp.logger.Warn("File extension is not a known resume format, reading it anyway",
			"filename", filename,
			"extension", utils.GetFileExtension(filename))
	}

	data, err := fp.ReadFile(filename)
	if err != nil {
		return types.ParseFileInput{}, err // Error already wrapped by ReadFile
	}

	return types.ParseFileInput{
		Filename: filepath.Base(filename),
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
