package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/vidstyle/internal/repositories"
	"github.com/desertthunder/vidstyle/internal/server"
	"github.com/desertthunder/vidstyle/internal/session"
	"github.com/desertthunder/vidstyle/internal/shared"
	"github.com/desertthunder/vidstyle/internal/tasks"
	"github.com/desertthunder/vidstyle/internal/web"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const (
	sweepInterval = time.Minute
	pruneInterval = 5 * time.Minute
)

// Serve runs the web interface until interrupted.
//
// Background janitors share an errgroup with the HTTP server; the first to fail stops the others.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("host") {
		config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		config.Server.Port = int(cmd.Int("port"))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	previews, err := r.openPreviews(config)
	if err != nil {
		return err
	}
	defer previews.Close()

	db, err := r.openDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewTransformRepository(db)
	if n, err := repo.MarkAbandoned(); err != nil {
		r.logger.Warn("failed to close out abandoned transforms", "error", err)
	} else if n > 0 {
		r.logger.Info("marked abandoned transforms as cancelled", "count", n)
	}
	recorder := tasks.NewRecorder(repo, r.logger)

	store, err := session.NewStore(session.StoreOpts{
		Factory:  r.sessionFactory(ctx, config, previews),
		TTL:      config.SessionTTL(),
		Logger:   shared.WithLogger(r.logger, "component", "sessions"),
		OnCreate: func(ctrl *session.Controller) { recorder.Attach(ctrl) },
	})
	if err != nil {
		return err
	}
	defer store.CloseAll()

	handler, err := web.New(web.Options{
		Store:          store,
		Catalog:        r.catalog,
		Previews:       previews,
		MaxUploadBytes: config.MaxUploadBytes(),
		Logger:         r.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build web handler: %w", err)
	}

	limiter := server.NewRateLimiter(server.RateLimitOpts{
		Rate:  config.Server.RateLimit,
		Burst: config.Server.RateBurst,
	})

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger), limiter.Middleware())
	router.Handler(handler)

	srv := server.New(config.Addr(), router, shared.WithLogger(r.logger, "component", "http"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		store.Run(gctx, sweepInterval)
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := limiter.Prune(); n > 0 {
					r.logger.Debug("pruned idle rate limiters", "count", n)
				}
			}
		}
	})

	url := shared.BrowserURL(config.Addr())
	r.logger.Info("video style transformer ready", "url", url)
	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}

	return g.Wait()
}
