package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/vidstyle/internal/shared"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// BatchOpts contains configuration for batch transforms.
type BatchOpts struct {
	Workers   int     // Concurrent transforms (default: 4, max: 16)
	RateLimit float64 // Transform starts per second (default: 10)
}

// BatchResult summarizes a batch, with one [Result] per request in request order.
type BatchResult struct {
	Results   []*Result
	Succeeded int
	Failed    int
}

// RunBatch transforms several files concurrently.
//
// A failed file is recorded in its [Result] and does not stop the others. The returned error is
// non-nil only when ctx ends the batch early.
func (e *Engine) RunBatch(ctx context.Context, progress chan<- ProgressUpdate, reqs []Request, opts BatchOpts) (*BatchResult, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no files to transform", shared.ErrMissingArgument)
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Workers > 16 {
		opts.Workers = 16
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	results := make([]*Result, len(reqs))

	var (
		mu        sync.Mutex
		completed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	var startErr error
	for i, req := range reqs {
		if err := limiter.Wait(gctx); err != nil {
			startErr = fmt.Errorf("%w: batch stopped before %s: %v", shared.ErrTimeout, req.Path, err)
			break
		}

		g.Go(func() error {
			res, err := e.Run(gctx, nil, req)
			if res == nil {
				res = &Result{Path: req.Path}
			}
			res.Err = err
			results[i] = res

			mu.Lock()
			completed++
			step := completed
			mu.Unlock()

			sendProgress(progress, batchUpdate(step, len(reqs), res))
			if err != nil {
				e.logger.Warn("transform failed", "file", req.Path, "error", err)
			}
			return nil
		})
	}

	waitErr := g.Wait()

	batch := &BatchResult{Results: make([]*Result, 0, len(reqs))}
	for i, res := range results {
		if res == nil {
			res = &Result{Path: reqs[i].Path, Err: startErr}
		}
		if res.Err == nil {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
		batch.Results = append(batch.Results, res)
	}

	switch {
	case waitErr != nil:
		return batch, waitErr
	case ctx.Err() != nil:
		return batch, fmt.Errorf("batch interrupted: %w", ctx.Err())
	case startErr != nil:
		return batch, startErr
	}
	return batch, nil
}
