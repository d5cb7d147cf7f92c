package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	app "github.com/rocketscienceinc/tictactoe-relay/internal"
	"github.com/rocketscienceinc/tictactoe-relay/internal/config"
)

// main - is the entry point of the application. It parses flags, loads the
// configuration, initializes the logger and runs the relay.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	cmd := &cli.Command{
		Name:  "tictactoe-relay",
		Usage: "multiplayer tic-tac-toe relay synchronized over Redis",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the yaml config file",
				Value:   "config.yml",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
			&cli.StringFlag{
				Name:  "port",
				Usage: "websocket listen port (overrides config)",
			},
			&cli.StringFlag{
				Name:  "redis-addr",
				Usage: "redis host:port used as the broker (overrides config)",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	conf, err := initConfig(cmd)
	if err != nil {
		return err
	}

	logger := initLogger(conf)

	if err = app.RunApp(ctx, logger, conf); err != nil {
		return fmt.Errorf("app run failed: %w", err)
	}

	return nil
}

// initialize config.
func initConfig(cmd *cli.Command) (*config.Config, error) {
	conf, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if port := cmd.String("port"); port != "" {
		conf.SocketPort = port
	}

	if addr := cmd.String("redis-addr"); addr != "" {
		if err = conf.Redis.SetRedisAddr(addr); err != nil {
			return nil, err
		}
	}

	if err = conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return conf, nil
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
