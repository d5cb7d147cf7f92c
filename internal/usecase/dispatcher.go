package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/repository"
)

const commandQueueSize = 256

type command func(ctx context.Context)

// Dispatcher runs every join, move, replay and disconnect of an instance on
// one goroutine, so the session registry never sees concurrent writers.
type Dispatcher struct {
	logger   *slog.Logger
	relay    *GameRelay
	sessions *repository.SessionRegistry

	commands chan command

	idleTTL       time.Duration
	sweepInterval time.Duration
}

// NewDispatcher builds a dispatcher. A zero idleTTL disables session eviction.
func NewDispatcher(logger *slog.Logger, relay *GameRelay, sessions *repository.SessionRegistry, idleTTL, sweepInterval time.Duration) *Dispatcher {
	return &Dispatcher{
		logger:   logger.With("component", "dispatcher"),
		relay:    relay,
		sessions: sessions,

		commands: make(chan command, commandQueueSize),

		idleTTL:       idleTTL,
		sweepInterval: sweepInterval,
	}
}

// Run processes commands until ctx is canceled.
func (that *Dispatcher) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	var sweep <-chan time.Time
	if that.idleTTL > 0 && that.sweepInterval > 0 {
		ticker := time.NewTicker(that.sweepInterval)
		defer ticker.Stop()
		sweep = ticker.C
	}

	log.Info("dispatcher started", "idleTTL", that.idleTTL)

	for {
		select {
		case <-ctx.Done():
			log.Info("dispatcher stopped")
			return nil
		case cmd := <-that.commands:
			cmd(ctx)
		case <-sweep:
			if evicted := that.sessions.EvictIdle(that.idleTTL); len(evicted) > 0 {
				log.Info("evicted idle sessions", "gameIDs", evicted, "remaining", that.sessions.Len())
			}
		}
	}
}

func (that *Dispatcher) Join(ctx context.Context, peer entity.Peer, playerID, gameID string) error {
	return that.submit(ctx, func(context.Context) {
		if err := that.relay.Join(peer, playerID, gameID); err != nil {
			that.logger.Info("join rejected", "connID", peer.ID(), "error", err)
		}
	})
}

// Move submits a move received from a local connection.
func (that *Dispatcher) Move(ctx context.Context, move entity.Move) error {
	return that.submitMove(ctx, move, entity.OriginLocal)
}

// Replay submits a move another instance already applied.
func (that *Dispatcher) Replay(ctx context.Context, move entity.Move) error {
	return that.submitMove(ctx, move, entity.OriginReplayed)
}

func (that *Dispatcher) Leave(ctx context.Context, peer entity.Peer, playerID, gameID string) error {
	return that.submit(ctx, func(context.Context) {
		that.relay.Leave(peer, playerID, gameID)
	})
}

func (that *Dispatcher) submitMove(ctx context.Context, move entity.Move, origin entity.Origin) error {
	return that.submit(ctx, func(loopCtx context.Context) {
		err := that.relay.Move(loopCtx, move, origin)
		switch {
		case err == nil:
		case apperror.IsRuleViolation(err), errors.Is(err, apperror.ErrUnknownSession):
			that.logger.Debug("move not applied", "gameID", move.GameID, "origin", origin, "error", err)
		default:
			that.logger.Error("move failed", "gameID", move.GameID, "origin", origin, "error", err)
		}
	})
}

func (that *Dispatcher) submit(ctx context.Context, cmd command) error {
	select {
	case that.commands <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
