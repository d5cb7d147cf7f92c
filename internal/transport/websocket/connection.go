package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 1024

	sendQueueSize = 64
)

// connection is one client. It implements entity.Peer; Send is called from
// the dispatcher loop and never blocks it.
type connection struct {
	id     string
	logger *slog.Logger
	ws     *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// Binding state, touched only by the read loop.
	joined   bool
	playerID string
	gameID   string
}

func newConnection(logger *slog.Logger, ws *websocket.Conn) *connection {
	id := uuid.NewString()

	return &connection{
		id:     id,
		logger: logger.With("connID", id),
		ws:     ws,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

func (that *connection) ID() string {
	return that.id
}

func (that *connection) Send(event *entity.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		that.logger.Error("failed to marshal event", "type", event.Type, "error", err)
		return
	}

	select {
	case that.send <- payload:
	case <-that.done:
	default:
		that.logger.Warn("send queue full, closing connection")
		that.close()
	}
}

func (that *connection) bind(playerID, gameID string) {
	that.joined = true
	that.playerID = playerID
	that.gameID = gameID
}

func (that *connection) unbind() {
	that.joined = false
	that.playerID = ""
	that.gameID = ""
}

func (that *connection) close() {
	that.closeOnce.Do(func() {
		close(that.done)
		_ = that.ws.Close()
	})
}

// writePump drains the send queue and keeps the connection alive with pings.
func (that *connection) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		that.close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = that.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		case <-that.done:
			return
		case payload := <-that.send:
			_ = that.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				that.logger.Debug("write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = that.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
