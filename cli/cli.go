package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/azirolabs/resultdash/collector"
	"github.com/azirolabs/resultdash/config"
	"github.com/azirolabs/resultdash/dashboard"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "resultdash"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Dashboard server for automation test results",
			Authors: []*cli.Author{
				{Name: "Aziro Labs", Email: fmt.Sprintf("engineering+%s@azirolabs.io", AppName)},
			},
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
				&cli.StringFlag{
					Name:    "config",
					Aliases: []string{"c"},
					Usage:   "Path to a YAML configuration file",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "serve",
		Usage:  "Start the dashboard HTTP server",
		Action: app.serve,
		Flags:  serveFlags(),
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "report",
		Usage:  "Collect the current test run and print a summary",
		Action: app.report,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the collected run as JSON",
			},
		},
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "history",
		Usage:  "List recorded test runs",
		Action: app.history,
	})
	// Default action when no command is specified
	app.cli.Action = app.serve
	app.cli.Flags = append(app.cli.Flags, serveFlags()...)
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Port for the dashboard HTTP server (overrides the config file)",
		},
		&cli.StringFlag{
			Name:  "reports-dir",
			Usage: "Directory containing the test report (overrides the config file)",
		},
		&cli.StringFlag{
			Name:  "logs-dir",
			Usage: "Directory containing test execution logs (overrides the config file)",
		},
		&cli.StringFlag{
			Name:  "static-dir",
			Usage: "Directory served for static assets (overrides the config file)",
		},
	}
}

// loadConfig reads the file named by --config, or starts from defaults, and
// applies any command line overrides on top.
func (a *App) loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
		a.logger.Debug().Str("path", path).Msg("Loaded configuration file")
	}
	if port := ctx.Int("port"); port != 0 {
		cfg.Port = port
	}
	if dir := ctx.String("reports-dir"); dir != "" {
		cfg.ReportsDir = dir
	}
	if dir := ctx.String("logs-dir"); dir != "" {
		cfg.LogsDir = dir
	}
	if dir := ctx.String("static-dir"); dir != "" {
		cfg.StaticDir = dir
	}
	return cfg, nil
}

func (a *App) serve(ctx *cli.Context) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := dashboard.New(a.logger, cfg, collector.New(a.logger, cfg))
	return srv.Run(runCtx)
}
