package common

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"resumeparser/internal/decode"
	"resumeparser/internal/errors"
	"resumeparser/internal/parser"
	"resumeparser/internal/service"
	"resumeparser/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `John Smith
john.smith@example.com

Work Experience
Backend Developer
Globex Inc
Jan 2018 - Mar 2021
Maintained the order pipeline`

func newRunner(maxFileSize int64) (*ParseRunner, *bytes.Buffer) {
	logger := errors.Discard()
	var stdout bytes.Buffer

	output := NewOutputHandler(logger, nil)
	output.SetOutput(&stdout)

	return &ParseRunner{
		Service: service.New(decode.NewLocalDecoder(logger), parser.New(parser.DefaultOptions(), logger), logger),
		Files:   NewFileProcessor(logger, maxFileSize, nil),
		Output:  output,
		Logger:  logger,
	}, &stdout
}

func writeResume(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseRunner_Stdout(t *testing.T) {
	runner, stdout := newRunner(0)
	path := writeResume(t, t.TempDir(), "john.txt", sampleResume)

	err := runner.Run(context.Background(), CommandConfig{OutputFormat: "json"}, []string{path})
	require.NoError(t, err)

	var data types.ParsedResumeData
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &data))
	assert.Equal(t, "John Smith", data.PersonalInfo.Name)
	require.Len(t, data.Experiences, 1)
	assert.Equal(t, "Jan 2018 - Mar 2021", data.Experiences[0].Period)
}

func TestParseRunner_OutputFile(t *testing.T) {
	runner, stdout := newRunner(0)
	dir := t.TempDir()
	path := writeResume(t, dir, "john.txt", sampleResume)
	out := filepath.Join(dir, "out", "john.md")

	err := runner.Run(context.Background(), CommandConfig{OutputFormat: "markdown", OutputFile: out}, []string{path})
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# John Smith")
	assert.Zero(t, stdout.Len())
}

func TestParseRunner_Batch(t *testing.T) {
	runner, _ := newRunner(0)
	dir := t.TempDir()
	first := writeResume(t, dir, "john.txt", sampleResume)
	second := writeResume(t, dir, "jane.md", "Jane Doe\njane@example.com")
	outDir := filepath.Join(dir, "results")

	err := runner.Run(context.Background(), CommandConfig{OutputFormat: "yaml", OutputFile: outDir}, []string{first, second})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(outDir, "john.yaml"))
	assert.FileExists(t, filepath.Join(outDir, "jane.yaml"))
}

func TestParseRunner_BatchContinuesPastFailures(t *testing.T) {
	runner, stdout := newRunner(0)
	dir := t.TempDir()
	good := writeResume(t, dir, "john.txt", sampleResume)

	err := runner.Run(context.Background(), CommandConfig{OutputFormat: "text"}, []string{filepath.Join(dir, "missing.pdf"), good})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed to parse")
	assert.Contains(t, stdout.String(), "Name:  John Smith")
}

func TestParseRunner_Errors(t *testing.T) {
	dir := t.TempDir()
	path := writeResume(t, dir, "john.txt", sampleResume)

	t.Run("no files", func(t *testing.T) {
		runner, _ := newRunner(0)
		err := runner.Run(context.Background(), CommandConfig{OutputFormat: "json"}, nil)
		assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
	})

	t.Run("file too large", func(t *testing.T) {
		runner, _ := newRunner(8)
		err := runner.Run(context.Background(), CommandConfig{OutputFormat: "json"}, []string{path})
		assert.Equal(t, errors.ErrCodeFileTooLarge, errors.CodeOf(err))
	})

	t.Run("unknown format", func(t *testing.T) {
		runner, _ := newRunner(0)
		err := runner.Run(context.Background(), CommandConfig{OutputFormat: "html"}, []string{path})
		assert.Equal(t, errors.ErrCodeInvalidFormat, errors.CodeOf(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		runner, _ := newRunner(0)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := runner.Run(ctx, CommandConfig{OutputFormat: "json"}, []string{path})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFileProcessor_WriteFile(t *testing.T) {
	fp := NewFileProcessor(nil, 0, nil)
	target := filepath.Join(t.TempDir(), "a", "b.json")

	require.NoError(t, fp.WriteFile(target, "{}"))
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(content))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
