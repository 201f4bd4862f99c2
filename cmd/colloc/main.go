package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/mgomes/colloc/internal/config"
	"github.com/mgomes/colloc/internal/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
)

func build() string {
	v, c := version, commit
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					c = s.Value
				}
			}
		}
	}
	if len(c) > 7 {
		c = c[:7]
	}
	return fmt.Sprintf("%s (%s)", v, c)
}

type flags struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
}

func main() {
	var (
		f         = &flags{}
		state     = &appState{}
		logCloser func()
	)

	defaultLog, _ := config.LogPath()

	app := &cli.Command{
		Name:      "colloc",
		Usage:     "Look up English word collocations",
		UsageText: "colloc [global options] [command [command options]]",
		Description: `colloc asks an AI model which words most often appear next to a given word,
with a frequency score and example sentences for each.

Run 'colloc' with no arguments to open the interactive lookup screen.
Run 'colloc setup' to configure the API key.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("COLLOC_CONFIG"),
				Value:       config.DefaultPath(),
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("COLLOC_LOG_LEVEL"),
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("COLLOC_LOG_FILE"),
				Value:       defaultLog,
				Destination: &f.LogFile,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(f.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			level := f.LogLevel
			if level == "" {
				level = cfg.LogLevel
			}
			logger, closer, err := logutils.New(level, f.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			if err := state.open(ctx, cfg, f.ConfigPath); err != nil {
				return ctx, err
			}
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			err := state.close()
			if err != nil {
				log.Error().Err(err).Msg("failed to close database")
			}
			if logCloser != nil {
				logCloser()
			}
			return err
		},
		Commands: []*cli.Command{
			newTuiCmd(state),
			newLookupCmd(state),
			newHistoryCmd(state),
			newRelatedCmd(state),
			newSetupCmd(state),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() > 0 {
				return fmt.Errorf("unknown command %q. Run 'colloc --help' for usage", c.Args().First())
			}
			return runTui(ctx, state)
		},
	}

	exitCode := 0
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
