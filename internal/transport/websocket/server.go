package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type dispatcher interface {
	Join(ctx context.Context, peer entity.Peer, playerID, gameID string) error
	Move(ctx context.Context, move entity.Move) error
	Leave(ctx context.Context, peer entity.Peer, playerID, gameID string) error
}

type Server struct {
	logger     *slog.Logger
	dispatcher dispatcher
	upgrader   websocket.Upgrader

	handlers map[string]func(ctx context.Context, conn *connection, message *Message) error
}

func New(logger *slog.Logger, dispatcher dispatcher) *Server {
	server := &Server{
		logger:     logger.With("component", "websocket"),
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Terminal clients send no Origin header; browsers are not a target.
			CheckOrigin: func(*http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, *connection, *Message) error),
	}

	server.handlers[messageTypeJoin] = server.handleJoin
	server.handlers[messageTypeMove] = server.handleMove

	return server
}

// Start - starts WebSocket server and blocks until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Handler upgrades every request to a websocket. Connections are closed when
// ctx is canceled.
func (that *Server) Handler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})
}

func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	ws, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := newConnection(that.logger, ws)
	conn.logger.Info("WebSocket connection established", "remote", req.RemoteAddr)

	go conn.writePump(ctx)

	that.handleMessages(ctx, conn)
}

// handleMessages - reads client messages until the connection ends, then
// releases the connection's player slot.
func (that *Server) handleMessages(ctx context.Context, conn *connection) {
	log := conn.logger.With("method", "handleMessages")

	defer func() {
		that.handleDisconnect(ctx, conn)
		conn.close()
	}()

	conn.ws.SetReadLimit(maxMessageSize)
	_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "error", err)
			}
			return
		}

		if err = that.handleMessage(ctx, conn, data); err != nil {
			log.Error("error processing message", "error", err)
		}
	}
}
