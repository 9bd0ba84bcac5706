package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	app "github.com/rocketscienceinc/tictactoe-timetravel/internal"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/config"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tui"
)

// main - is the entry point of the application. It parses the command line and runs the chosen command.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	cliApp := &cli.App{
		Name:  "tictactoe",
		Usage: "Tic-tac-toe with move history and time travel",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve games over HTTP and WebSocket",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Value:   "./config.yml",
						Usage:   "path to the config file",
					},
				},
				Action: serve,
			},
			{
				Name:  "play",
				Usage: "Play a local game in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "log-file",
						Usage: "write logs to this file, they are dropped when empty",
					},
				},
				Action: play,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

func serve(c *cli.Context) error {
	conf := initConfig(c.String("config"))
	logger := initLogger(conf, os.Stdout)

	return app.RunApp(logger, conf)
}

func play(c *cli.Context) error {
	conf, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	out := io.Discard
	if path := c.String("log-file"); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer file.Close()

		out = file
	}

	return tui.Run(initLogger(conf, out))
}

// initialize config.
func initConfig(path string) *config.Config {
	if !filepath.IsAbs(path) {
		baseDir, err := os.Getwd()
		if err != nil {
			panic(fmt.Errorf("failed to get current directory: %w", err))
		}

		path = filepath.Join(baseDir, path)
	}

	return config.MustLoad(path)
}

// initialize logger.
func initLogger(conf *config.Config, out io.Writer) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}
