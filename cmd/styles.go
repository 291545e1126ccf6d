package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/vidstyle/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Styles prints the preset catalog in the requested format.
func (r *Runner) Styles(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	data, err := formatter.RenderStyles(r.catalog.All(), format)
	if err != nil {
		return fmt.Errorf("failed to render styles: %w", err)
	}

	path, err := formatter.Write(r.output, cmd.String("output"), data)
	if err != nil {
		return err
	}
	if path != "" {
		r.logger.Info("styles written", "path", path, "count", r.catalog.Len())
	}
	return nil
}
