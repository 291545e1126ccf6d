package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/vidstyle/internal/formatter"
	"github.com/desertthunder/vidstyle/internal/models"
	"github.com/desertthunder/vidstyle/internal/repositories"
	"github.com/desertthunder/vidstyle/internal/shared"
	"github.com/urfave/cli/v3"
)

// History prints recorded transform runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if status := models.TransformStatus(cmd.String("status")); status != "" {
		if !status.Valid() {
			return fmt.Errorf("%w: status %q", shared.ErrInvalidFlag, status)
		}
		criteria["status"] = status
	}
	if style := models.StyleID(cmd.String("style")); style != "" {
		if _, err := r.catalog.Must(style); err != nil {
			return err
		}
		criteria["style_id"] = style
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := r.openDatabase(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	jobs, err := repositories.NewTransformRepository(db).List(criteria)
	if err != nil {
		return err
	}

	data, err := formatter.RenderHistory(jobs, format)
	if err != nil {
		return fmt.Errorf("failed to render history: %w", err)
	}

	path, err := formatter.Write(r.output, cmd.String("output"), data)
	if err != nil {
		return err
	}
	if path != "" {
		r.logger.Info("history written", "path", path, "count", len(jobs))
	}
	return nil
}
