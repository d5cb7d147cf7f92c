package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

// handleMessage decodes a request and routes it by type. Malformed and
// unknown requests are answered with an error event; the connection stays open.
func (that *Server) handleMessage(ctx context.Context, conn *connection, data []byte) error {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		conn.logger.Info("malformed message", "error", err)
		conn.Send(entity.NewErrorEvent(apperror.ErrMalformedMessage))
		return nil
	}

	handler, ok := that.handlers[message.Type]
	if !ok {
		conn.logger.Info("unknown message type", "type", message.Type)
		conn.Send(entity.NewErrorEvent(apperror.ErrUnknownMessageType))
		return nil
	}

	return handler(ctx, conn, &message)
}

func (that *Server) handleJoin(ctx context.Context, conn *connection, message *Message) error {
	log := conn.logger.With("method", "handleJoin")

	if err := entity.ValidateJoin(message.PlayerID, message.GameID); err != nil {
		log.Info("invalid join", "error", err)
		conn.Send(entity.NewErrorEvent(err))
		return nil
	}

	// Re-joining moves the connection; release the old slot first.
	if conn.joined && (conn.playerID != message.PlayerID || conn.gameID != message.GameID) {
		if err := that.dispatcher.Leave(ctx, conn, conn.playerID, conn.gameID); err != nil {
			return fmt.Errorf("failed to leave previous game: %w", err)
		}
		conn.unbind()
	}

	if err := that.dispatcher.Join(ctx, conn, message.PlayerID, message.GameID); err != nil {
		return fmt.Errorf("failed to join game %s: %w", message.GameID, err)
	}

	conn.bind(message.PlayerID, message.GameID)

	log.Debug("join submitted", "gameID", message.GameID, "playerID", message.PlayerID)

	return nil
}

func (that *Server) handleMove(ctx context.Context, conn *connection, message *Message) error {
	if !conn.joined {
		conn.Send(entity.NewErrorEvent(apperror.ErrNotJoined))
		return nil
	}

	if message.Row == nil || message.Col == nil || !entity.InBounds(*message.Row, *message.Col) {
		conn.Send(entity.NewErrorEvent(apperror.ErrInvalidCell))
		return nil
	}

	move := entity.Move{
		GameID:   conn.gameID,
		PlayerID: conn.playerID,
		Row:      *message.Row,
		Col:      *message.Col,
	}

	if err := that.dispatcher.Move(ctx, move); err != nil {
		return fmt.Errorf("failed to submit move: %w", err)
	}

	return nil
}

func (that *Server) handleDisconnect(ctx context.Context, conn *connection) {
	log := conn.logger.With("method", "handleDisconnect")

	if !conn.joined {
		log.Info("connection closed before joining")
		return
	}

	if err := that.dispatcher.Leave(ctx, conn, conn.playerID, conn.gameID); err != nil {
		log.Error("failed to release player slot", "error", err)
		return
	}

	log.Info("player disconnected", "gameID", conn.gameID, "playerID", conn.playerID)
}
