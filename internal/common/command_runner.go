package common

import (
	"context"
	"fmt"

	"resumeparser/internal/errors"
	"resumeparser/internal/service"
	"resumeparser/internal/utils"
)

// ParseRunner holds the collaborators of the parse command
type ParseRunner struct {
	Service *service.Service
	Files   *FileProcessor
	Output  *OutputHandler
	Logger  *errors.Logger
}

// Run decodes, parses and writes every file in args. With several files a
// non-empty OutputFile names a directory that receives one result per input.
func (r *ParseRunner) Run(ctx context.Context, cmdConfig CommandConfig, args []string) error {
	if len(args) == 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "At least one file is required", nil)
	}

	batch := len(args) > 1
	failed := 0

	for _, path := range args {
		if err := ctx.Err(); err != nil {
			return err
		}

		target := cmdConfig
		if batch && cmdConfig.OutputFile != "" {
			target.OutputFile = utils.OutputPath(cmdConfig.OutputFile, path, cmdConfig.OutputFormat)
		}

		if err := r.runOne(ctx, path, target); err != nil {
			if !batch {
				return err
			}
			r.Logger.LogError(err, "Failed to parse file", "file", path)
			failed++
		}
	}

	if failed > 0 {
		return errors.NewIOError("BATCH_FAILED",
			fmt.Sprintf("%d of %d files failed to parse", failed, len(args)), nil)
	}
	return nil
}

func (r *ParseRunner) runOne(ctx context.Context, path string, cmdConfig CommandConfig) error {
	input, err := r.Files.ReadDocument(path, cmdConfig.MIMEType)
	if err != nil {
		return err
	}

	r.Logger.Debug("Parsing resume",
		"file", path,
		"size", utils.FormatFileSize(int64(len(input.Data))),
		"format", cmdConfig.OutputFormat)

	result, err := r.Service.ParseFile(ctx, service.SourceCLI, input)
	if err != nil {
		return err
	}

	if fallbacks := result.Report.Fallbacks(); len(fallbacks) > 0 {
		r.Logger.Warn("Some fields were not found and use placeholder values",
			"file", path,
			"fields", fallbacks)
	}

	return r.Output.HandleOutput(result.Data, cmdConfig)
}
