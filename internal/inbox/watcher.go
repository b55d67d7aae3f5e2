// Package inbox parses resumes dropped into a watched directory.
package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"resumeparser/internal/common"
	"resumeparser/internal/errors"
	"resumeparser/internal/service"
	"resumeparser/internal/utils"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounceDelay = 500 * time.Millisecond

// Config describes one inbox
type Config struct {
	Dir           string
	OutDir        string        // Defaults to Dir
	Format        string        // Output format, defaults to json
	Extensions    []string      // nil means the default document types
	DebounceDelay time.Duration // Quiet period before a changed file is parsed
	MIMEType      string        // Overrides detection when set
	ScanExisting  bool          // Parse files already present at start
}

// Watcher parses documents as they are created or rewritten in a directory
type Watcher struct {
	cfg     Config
	service *service.Service
	files   *common.FileProcessor
	output  *common.OutputHandler
	logger  *errors.Logger

	mu        sync.Mutex
	timers    map[string]*time.Timer
	processed map[string]time.Time
	ready     chan string

	// OnProcessed, when set, is called after each document with the output
	// path or the error
	OnProcessed func(input, output string, err error)
}

// New creates a watcher. It does not touch the filesystem until Run.
func New(cfg Config, svc *service.Service, files *common.FileProcessor, output *common.OutputHandler, logger *errors.Logger) *Watcher {
	if logger == nil {
		logger = errors.Discard()
	}
	if cfg.OutDir == "" {
		cfg.OutDir = cfg.Dir
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = defaultDebounceDelay
	}

	return &Watcher{
		cfg:       cfg,
		service:   svc,
		files:     files,
		output:    output,
		logger:    logger.With("component", "inbox", "dir", cfg.Dir),
		timers:    make(map[string]*time.Timer),
		processed: make(map[string]time.Time),
		ready:     make(chan string, 64),
	}
}

// Run watches the inbox until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.cfg.Dir)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotFound,
			fmt.Sprintf("Inbox directory not found: %s", w.cfg.Dir), err)
	}
	if !info.IsDir() {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("Inbox path is not a directory: %s", w.cfg.Dir), nil)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := fsWatcher.Close(); closeErr != nil {
			w.logger.LogError(closeErr, "Failed to close file watcher")
		}
	}()

	if err := fsWatcher.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", w.cfg.Dir, err)
	}

	w.logger.Info("Inbox watcher started",
		"out_dir", w.cfg.OutDir,
		"format", w.cfg.Format,
		"debounce_delay", w.cfg.DebounceDelay)

	if w.cfg.ScanExisting {
		w.scanExisting()
	}

	defer w.stopTimers()

	for {
		select {
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if w.shouldProcessEvent(event) {
				w.schedule(event.Name)
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.LogError(err, "File watcher error")

		case path := <-w.ready:
			w.process(ctx, path)

		case <-ctx.Done():
			w.logger.Info("Inbox watcher stopped")
			return nil
		}
	}
}

// shouldProcessEvent keeps writes and creates of visible resume documents
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	if utils.IsHiddenOrTemp(event.Name) {
		return false
	}
	return utils.IsDocumentFile(event.Name, w.cfg.Extensions)
}

// schedule (re)starts the debounce timer of path
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.cfg.DebounceDelay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case w.ready <- path:
		default:
			w.logger.Warn("Inbox queue full, dropping event", "file", path)
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) scanExisting() {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		w.logger.LogError(err, "Failed to list inbox directory")
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.cfg.Dir, entry.Name())
		if !utils.IsHiddenOrTemp(path) && utils.IsDocumentFile(path, w.cfg.Extensions) {
			w.schedule(path)
		}
	}
}

// changed reports whether path has a newer modification time than the last
// one processed, and records it
func (w *Watcher) changed(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	last, seen := w.processed[path]
	if seen && !info.ModTime().After(last) {
		return false
	}
	w.processed[path] = info.ModTime()
	return true
}

func (w *Watcher) process(ctx context.Context, path string) {
	if !w.changed(path) {
		return
	}

	outPath := utils.OutputPath(w.cfg.OutDir, path, w.cfg.Format)
	err := w.parse(ctx, path, outPath)
	if err != nil {
		w.logger.LogError(err, "Failed to parse inbox document", "file", path)
	} else {
		// outputs that land in the inbox must not be parsed again
		w.changed(outPath)
		w.logger.Info("Inbox document parsed", "file", path, "output", outPath)
	}

	if w.OnProcessed != nil {
		w.OnProcessed(path, outPath, err)
	}
}

func (w *Watcher) parse(ctx context.Context, path, outPath string) error {
	input, err := w.files.ReadDocument(path, w.cfg.MIMEType)
	if err != nil {
		return err
	}

	result, err := w.service.ParseFile(ctx, service.SourceInbox, input)
	if err != nil {
		return err
	}

	return w.output.HandleOutput(result.Data, common.CommandConfig{
		OutputFile:   outPath,
		OutputFormat: w.cfg.Format,
	})
}
