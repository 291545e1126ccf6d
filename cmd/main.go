package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/vidstyle/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	// VIDSTYLE_* overrides may live in a .env file beside config.toml
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env", "error", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "vidstyle",
		Usage:    "Pick a style preset, upload a video, and watch it transform",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
