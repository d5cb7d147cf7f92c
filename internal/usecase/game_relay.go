package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/repository"
)

type publisher interface {
	PublishMove(ctx context.Context, move entity.Move) error
}

// GameRelay applies joins, moves and disconnects to the sessions of one
// instance and fans the results out to the attached connections.
// Calls must be serialized; see Dispatcher.
type GameRelay struct {
	logger    *slog.Logger
	sessions  *repository.SessionRegistry
	publisher publisher
}

func NewGameRelay(logger *slog.Logger, sessions *repository.SessionRegistry, publisher publisher) *GameRelay {
	return &GameRelay{
		logger: logger.With("component", "relay"),

		sessions:  sessions,
		publisher: publisher,
	}
}

// Join binds peer to the player slot of the game, creating the game on first
// join, and sends the joining peer the current state.
func (that *GameRelay) Join(peer entity.Peer, playerID, gameID string) error {
	log := that.logger.With("method", "Join", "gameID", gameID, "playerID", playerID)

	if err := entity.ValidateJoin(playerID, gameID); err != nil {
		peer.Send(entity.NewErrorEvent(err))
		return fmt.Errorf("invalid join: %w", err)
	}

	session := that.sessions.GetOrCreate(gameID)
	that.sessions.Attach(session, playerID, peer)

	peer.Send(entity.NewUpdateEvent(session.Board, session.NextTurn))

	log.Info("player joined", "connID", peer.ID(), "players", len(session.Players))

	return nil
}

// Leave releases the player slot held by peer. The board stays as it is.
func (that *GameRelay) Leave(peer entity.Peer, playerID, gameID string) {
	log := that.logger.With("method", "Leave", "gameID", gameID, "playerID", playerID)

	session, err := that.sessions.GetByID(gameID)
	if err != nil {
		log.Debug("session already gone", "error", err)
		return
	}

	if that.sessions.Detach(session, playerID, peer) {
		log.Info("player left", "connID", peer.ID(), "players", len(session.Players))
	}
}

// Move validates and applies a move, then broadcasts the new state to the
// local connections. Only OriginLocal moves are published to the broker.
func (that *GameRelay) Move(ctx context.Context, move entity.Move, origin entity.Origin) error {
	log := that.logger.With("method", "Move", "gameID", move.GameID, "playerID", move.PlayerID, "origin", origin)

	session, err := that.sessions.GetByID(move.GameID)
	if err != nil {
		log.Debug("move for unknown session dropped")
		return err
	}

	if err = that.checkMove(session, move); err != nil {
		that.reject(log, session, move, origin, err)
		return err
	}

	session.Board.ApplyMove(move.Row, move.Col, move.PlayerID)
	session.NextTurn = entity.OtherPlayer(move.PlayerID)
	that.sessions.Touch(session)

	session.Broadcast(entity.NewUpdateEvent(session.Board, session.NextTurn))

	if origin == entity.OriginLocal {
		if err = that.publisher.PublishMove(ctx, move); err != nil {
			log.Error("failed to publish move", "error", err)
			err = fmt.Errorf("failed to publish move: %w", err)
		}
	}

	if winner := session.Board.Winner(); winner != "" {
		session.Broadcast(entity.NewWinEvent(session.Board, winner))
		log.Info("game won", "winner", winner)
	} else if session.Board.IsDraw() {
		session.Broadcast(entity.NewDrawEvent(session.Board))
		log.Info("game drawn")
	}

	return err
}

func (that *GameRelay) checkMove(session *entity.Session, move entity.Move) error {
	if !entity.InBounds(move.Row, move.Col) {
		return fmt.Errorf("%w: row %d col %d", apperror.ErrInvalidCell, move.Row, move.Col)
	}

	if session.NextTurn != move.PlayerID {
		return apperror.ErrNotYourTurn
	}

	if !session.Board.IsEmptyAt(move.Row, move.Col) {
		return apperror.ErrCellOccupied
	}

	return nil
}

// reject answers the acting player of a local move. A replayed move was
// already answered by the instance that accepted it, so a rejection here
// means this instance's view has diverged and is only logged.
func (that *GameRelay) reject(log *slog.Logger, session *entity.Session, move entity.Move, origin entity.Origin, err error) {
	if origin == entity.OriginReplayed {
		log.Warn("replayed move rejected, instance state diverged",
			"row", move.Row, "col", move.Col, "nextTurn", session.NextTurn, "error", err)
		return
	}

	event := entity.NewErrorEvent(err)
	if errors.Is(err, apperror.ErrInvalidCell) {
		event = entity.NewErrorEvent(apperror.ErrInvalidCell)
	}

	session.SendTo(move.PlayerID, event)
	log.Info("move rejected", "row", move.Row, "col", move.Col, "error", err)
}
