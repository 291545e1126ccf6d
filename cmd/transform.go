package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/repositories"
	"github.com/desertthunder/vidstyle/internal/session"
	"github.com/desertthunder/vidstyle/internal/shared"
	"github.com/desertthunder/vidstyle/internal/tasks"
	"github.com/urfave/cli/v3"
)

type transformOutput struct {
	File      string `json:"file"`
	SessionID string `json:"session_id,omitempty"`
	Style     string `json:"style,omitempty"`
	MediaType string `json:"media_type,omitempty"`
	MediaSize string `json:"media_size,omitempty"`
	Progress  int    `json:"progress"`
	Elapsed   string `json:"elapsed,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Transform runs the simulated transform on each --file headlessly and prints progress.
//
// One file streams per-tick progress; several files run as a batch and report one line per file.
func (r *Runner) Transform(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	style := models.StyleID(cmd.String("style"))
	if _, err := r.catalog.Must(style); err != nil {
		return fmt.Errorf("%w (choose one of %v)", err, r.catalog.IDs())
	}

	files := cmd.StringSlice("file")
	if len(files) == 0 {
		return fmt.Errorf("%w: --file", shared.ErrMissingArgument)
	}
	useJSON := cmd.Bool("json")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	previews, err := r.openPreviews(config)
	if err != nil {
		return err
	}
	defer previews.Close()

	factory := r.sessionFactory(ctx, config, previews)
	if !cmd.Bool("no-history") {
		db, err := r.openDatabase(ctx, config)
		if err != nil {
			r.logger.Warn("history disabled", "error", err)
		} else {
			defer db.Close()
			factory = recording(factory, tasks.NewRecorder(repositories.NewTransformRepository(db), r.logger))
		}
	}

	engine := tasks.NewEngine(factory, r.logger)

	progress := make(chan tasks.ProgressUpdate, 128)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			if !useJSON {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	reqs := make([]tasks.Request, len(files))
	for i, f := range files {
		reqs[i] = tasks.Request{Style: style, Path: f}
	}

	var results []*tasks.Result
	var runErr error
	if len(reqs) == 1 {
		var res *tasks.Result
		res, runErr = engine.Run(ctx, progress, reqs[0])
		if res == nil {
			res = &tasks.Result{Path: reqs[0].Path}
		}
		res.Err = runErr
		results = []*tasks.Result{res}
	} else {
		var batch *tasks.BatchResult
		batch, runErr = engine.RunBatch(ctx, progress, reqs, tasks.BatchOpts{Workers: int(cmd.Int("workers"))})
		if batch != nil {
			results = batch.Results
			if runErr == nil && batch.Failed > 0 {
				runErr = fmt.Errorf("%d of %d transforms failed", batch.Failed, len(reqs))
			}
		}
	}

	close(progress)
	wg.Wait()

	if useJSON {
		out := make([]transformOutput, len(results))
		for i, res := range results {
			out[i] = toTransformOutput(res)
		}
		if err := r.writeJSON(out, true); err != nil {
			return err
		}
	} else {
		r.writeSummary(results)
	}

	return runErr
}

func (r *Runner) writeSummary(results []*tasks.Result) {
	r.writePlainln("")
	r.writePlainHeader("Transform Summary")
	for _, res := range results {
		if res.Err != nil {
			r.writePlain("✗ %s: %v\n", res.Path, res.Err)
			continue
		}
		r.writePlain("✓ %s  %s %s  %s  %d%%  %s\n",
			res.Media.Name, res.Style.Emoji, res.Style.Title, shared.FormatMegabytes(res.Media.Size), res.Progress, elapsed(res.Elapsed))
	}
}

func toTransformOutput(res *tasks.Result) transformOutput {
	out := transformOutput{File: res.Path, SessionID: res.SessionID, Progress: res.Progress}
	if res.Style.ID != "" {
		out.Style = string(res.Style.ID)
	}
	if res.Media.Name != "" {
		out.MediaType = res.Media.ContentType
		out.MediaSize = shared.FormatMegabytes(res.Media.Size)
	}
	if res.Elapsed > 0 {
		out.Elapsed = elapsed(res.Elapsed)
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

// recording wraps factory so every controller it builds is attached to recorder.
func recording(factory session.Factory, recorder *tasks.Recorder) session.Factory {
	return func(id string) (*session.Controller, error) {
		ctrl, err := factory(id)
		if err != nil {
			return nil, err
		}
		recorder.Attach(ctrl)
		return ctrl, nil
	}
}
