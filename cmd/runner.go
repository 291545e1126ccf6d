package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidstyle/internal/media"
	"github.com/desertthunder/vidstyle/internal/session"
	"github.com/desertthunder/vidstyle/internal/shared"
	"github.com/desertthunder/vidstyle/internal/styles"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    *styles.Catalog
	logger     *log.Logger
	output     io.Writer
	scheduler  session.Scheduler
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config    // Preloaded config; skips reading --config when set
	ConfigPath string            // Default config path (default: config.toml)
	Catalog    *styles.Catalog   // Preset catalog (default: [styles.Default])
	Logger     *log.Logger
	Output     io.Writer
	Scheduler  session.Scheduler // Progress ticker shared by every session; nil uses a real ticker per command
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Catalog == nil {
		opts.Catalog = styles.Default()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		logger:     opts.Logger,
		output:     opts.Output,
		scheduler:  opts.Scheduler,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, tuiCommand, transformCommand, stylesCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by subsequent command actions.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// loadConfig resolves the configuration for a command: the --config file (or the embedded defaults when it
// does not exist), then VIDSTYLE_* overrides. The log level follows the result.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	path := r.configPath
	if cmd != nil && cmd.IsSet("config") {
		path = cmd.String("config")
	}

	config, err := shared.ResolveConfig(path)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	shared.SetLogLevel(r.logger, shared.ParseLogLevel(config.Log.Level))
	r.config = config
	return config, nil
}

// openPreviews creates the disk-backed preview store described by config.
func (r *Runner) openPreviews(config *shared.Config) (*media.DiskPreviews, error) {
	previews, err := media.NewDiskPreviews(media.DiskPreviewsOpts{
		Dir:      config.Previews.Dir,
		MaxBytes: config.MaxUploadBytes(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open preview store: %w", err)
	}
	return previews, nil
}

// openDatabase opens the history database and applies pending migrations.
func (r *Runner) openDatabase(ctx context.Context, config *shared.Config) (*sql.DB, error) {
	r.logger.Debug("opening database", "path", config.Database.Path)
	return shared.OpenMigrated(ctx, config.Database)
}

// sessionFactory builds controllers that share previews, the catalog, and a scheduler bound to ctx.
func (r *Runner) sessionFactory(ctx context.Context, config *shared.Config, previews media.Previews) session.Factory {
	scheduler := r.scheduler
	if scheduler == nil {
		scheduler = session.NewTickerScheduler(ctx)
	}
	interval := config.TickInterval()
	step := config.Transform.Step

	return func(id string) (*session.Controller, error) {
		return session.New(session.Options{
			ID:        id,
			Catalog:   r.catalog,
			Previews:  previews,
			Scheduler: scheduler,
			Interval:  interval,
			Step:      step,
			Logger:    r.logger,
		})
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

func elapsed(d time.Duration) string {
	return d.Round(100 * time.Millisecond).String()
}
