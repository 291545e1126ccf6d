// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (json, csv, markdown, txt)",
		Value:   "txt",
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write to this file instead of stdout",
	}
}

// serveCommand starts the web interface
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the video style transformer web page",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (overrides server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the page in the default browser once listening",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive transforms.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal interface",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}

// transformCommand runs transforms without an interface
func transformCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transform",
		Usage: "Run a transform on one or more video files and print progress",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "style",
				Aliases:  []string{"s"},
				Usage:    "Style preset (cinematic, action, aesthetic, realistic)",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "file",
				Usage:    "Video file to transform (repeatable)",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent transforms when several files are given",
				Value: 4,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output results as JSON",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record the runs in the history database",
			},
		},
		Action: r.Transform,
	}
}

// stylesCommand lists the preset catalog
func stylesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "styles",
		Usage:  "List the available style presets",
		Flags:  []cli.Flag{formatFlag(), outputFlag()},
		Action: r.Styles,
	}
}

// historyCommand lists recorded transforms
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded transform runs",
		Flags: []cli.Flag{
			configFlag(),
			formatFlag(),
			outputFlag(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to list",
				Value:   20,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only list runs with this status (running, complete, cancelled)",
			},
			&cli.StringFlag{
				Name:  "style",
				Usage: "Only list runs with this style",
			},
		},
		Action: r.History,
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write the default configuration file",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "print",
						Usage: "Print the default configuration instead of writing it",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}
