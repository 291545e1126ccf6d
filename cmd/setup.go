package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/vidstyle/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
//
// A missing config file is created from the template first.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupConfig writes the default configuration file, or prints it with --print.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("print") {
		return r.writePlain("%s", shared.ExampleConfig())
	}

	configPath := cmd.String("config")
	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.writePlain("✓ Configuration written to %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Adjust [server] and [previews] in %s\n", configPath)
	r.writePlain("2. Run 'vidstyle setup database -c %s'\n", configPath)
	r.writePlain("3. Run 'vidstyle serve --open'\n")
	return nil
}
