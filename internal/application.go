package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-relay/internal/config"
	"github.com/rocketscienceinc/tictactoe-relay/internal/repository"
	"github.com/rocketscienceinc/tictactoe-relay/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-relay/internal/transport/redis"
	"github.com/rocketscienceinc/tictactoe-relay/internal/transport/rest"
	"github.com/rocketscienceinc/tictactoe-relay/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-relay/internal/usecase"
)

// RunApp - runs the relay until SIGINT/SIGTERM or a component fails.
func RunApp(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return fmt.Errorf("could not connect to redis: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	bridge := redis.NewBridge(logger, redisStorage.Connection, conf.Broker.Channel)
	sessions := repository.NewSessionRegistry()
	relay := usecase.NewGameRelay(logger, sessions, bridge)
	dispatcher := usecase.NewDispatcher(logger, relay, sessions, conf.Sessions.IdleTTL, conf.Sessions.SweepInterval)

	subscription, err := bridge.Subscribe(ctx, dispatcher)
	if err != nil {
		return fmt.Errorf("could not subscribe to broker: %w", err)
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return dispatcher.Run(ctx)
	})

	group.Go(func() error {
		if subErr := subscription.Run(ctx); subErr != nil {
			return fmt.Errorf("broker subscription error: %w", subErr)
		}
		return nil
	})

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, redisStorage); httpErr != nil {
			return fmt.Errorf("HTTP server error: %w", httpErr)
		}
		return nil
	})

	group.Go(func() error {
		log.Info("Starting WebSocket server", "port", conf.SocketPort, "instanceID", bridge.InstanceID())
		if wsErr := websocket.New(logger, dispatcher).Start(ctx, conf.SocketPort); wsErr != nil {
			return fmt.Errorf("WebSocket server error: %w", wsErr)
		}
		return nil
	})

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
