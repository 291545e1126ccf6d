package tasks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidstyle/internal/media"
	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/session"
	"github.com/desertthunder/vidstyle/internal/shared"
)

// sniffLen matches the number of bytes http.DetectContentType considers.
const sniffLen = 512

// Request names one file to transform with one preset.
type Request struct {
	Style models.StyleID
	Path  string
}

// Result is the outcome of a single transform.
type Result struct {
	Path      string
	SessionID string
	Style     models.StylePreset
	Media     models.Media
	Progress  int
	Elapsed   time.Duration
	Err       error
}

// Engine runs transforms without an interactive surface, one controller per request.
type Engine struct {
	newSession session.Factory
	logger     *log.Logger
}

// NewEngine creates an engine that builds controllers with factory.
func NewEngine(factory session.Factory, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{newSession: factory, logger: logger}
}

// Run transforms the file named by req and blocks until the transform completes or ctx is done.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate, req Request) (*Result, error) {
	if e.newSession == nil {
		return nil, fmt.Errorf("%w: session factory not initialized", shared.ErrServiceUnavailable)
	}
	if req.Path == "" {
		return nil, fmt.Errorf("%w: file path", shared.ErrMissingArgument)
	}

	start := time.Now()
	result := &Result{Path: req.Path}

	sendProgress(progress, prepareUpdate(req.Path))

	upload, closeFile, err := OpenUpload(req.Path)
	if err != nil {
		return nil, err
	}
	defer closeFile()

	ctrl, err := e.newSession(shared.GenerateID())
	if err != nil {
		return nil, err
	}
	defer ctrl.Close()
	result.SessionID = ctrl.ID()

	if err := ctrl.SelectStyle(req.Style); err != nil {
		return nil, err
	}
	if err := ctrl.SelectMedia(upload); err != nil {
		return nil, err
	}
	closeFile()

	snap := ctrl.Snapshot()
	result.Style = *snap.Style
	result.Media = *snap.Media
	sendProgress(progress, uploadUpdate(result.Media))

	done := make(chan struct{})
	var once sync.Once
	unsubscribe := ctrl.Subscribe(func(ev session.Event) {
		switch ev.Kind {
		case session.ProgressAdvanced:
			sendProgress(progress, transformUpdate(ev.Snapshot.Progress, result.Style))
		case session.TransformCompleted, session.TransformCancelled, session.SessionClosed:
			once.Do(func() { close(done) })
		}
	})
	defer unsubscribe()

	if err := ctrl.StartTransform(); err != nil {
		return nil, err
	}
	e.logger.Debug("headless transform started", "session", ctrl.ID(), "file", req.Path, "style", req.Style)

	select {
	case <-done:
	case <-ctx.Done():
		result.Progress = ctrl.Snapshot().Progress
		result.Elapsed = time.Since(start)
		return result, fmt.Errorf("transform interrupted at %d%%: %w", result.Progress, ctx.Err())
	}

	result.Progress = ctrl.Snapshot().Progress
	result.Elapsed = time.Since(start)
	sendProgress(progress, completeUpdate(result))
	return result, nil
}

// OpenUpload opens path and resolves its content type from the extension or leading bytes.
func OpenUpload(path string) (media.Upload, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return media.Upload{}, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var once sync.Once
	closeFile := func() { once.Do(func() { f.Close() }) }

	info, err := f.Stat()
	if err != nil {
		closeFile()
		return media.Upload{}, nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		closeFile()
		return media.Upload{}, nil, fmt.Errorf("%w: %s is a directory", shared.ErrInvalidArgument, path)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		closeFile()
		return media.Upload{}, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	head = head[:n]

	upload := media.Upload{
		Name:        filepath.Base(path),
		ContentType: media.ResolveContentType("", path, head),
		Size:        info.Size(),
		Body:        io.MultiReader(bytes.NewReader(head), f),
	}
	return upload, closeFile, nil
}
