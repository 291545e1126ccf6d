package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/vidstyle/internal/repositories"
	"github.com/desertthunder/vidstyle/internal/shared"
	"github.com/desertthunder/vidstyle/internal/tasks"
	"github.com/desertthunder/vidstyle/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal interface over a single session.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(config.Log.Level))
	r.SetLogger(fileLogger)

	previews, err := r.openPreviews(config)
	if err != nil {
		return err
	}
	defer previews.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var recorder *tasks.Recorder
	if db, err := r.openDatabase(ctx, config); err != nil {
		r.logger.Warn("history disabled", "error", err)
	} else {
		defer db.Close()
		recorder = tasks.NewRecorder(repositories.NewTransformRepository(db), r.logger)
	}

	ctrl, err := r.sessionFactory(ctx, config, previews)(shared.GenerateID())
	if err != nil {
		return err
	}
	defer ctrl.Close()
	if recorder != nil {
		recorder.Attach(ctrl)
	}

	model := ui.NewModel(ctrl)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
