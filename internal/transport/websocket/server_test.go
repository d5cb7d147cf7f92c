package websocket

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/repository"
	"github.com/rocketscienceinc/tictactoe-relay/internal/usecase"
)

type countingPublisher struct {
	mu    sync.Mutex
	moves []entity.Move
}

func (that *countingPublisher) PublishMove(_ context.Context, move entity.Move) error {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.moves = append(that.moves, move)
	return nil
}

func (that *countingPublisher) count() int {
	that.mu.Lock()
	defer that.mu.Unlock()
	return len(that.moves)
}

func startTestServer(t *testing.T) (string, *countingPublisher) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := repository.NewSessionRegistry()
	pub := &countingPublisher{}
	relay := usecase.NewGameRelay(logger, sessions, pub)
	dispatcher := usecase.NewDispatcher(logger, relay, sessions, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = dispatcher.Run(ctx) }()

	srv := httptest.NewServer(New(logger, dispatcher).Handler(ctx))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return "ws" + strings.TrimPrefix(srv.URL, "http"), pub
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, message any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(message))
}

func readEvent(t *testing.T, conn *websocket.Conn) entity.Event {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var event entity.Event
	require.NoError(t, conn.ReadJSON(&event))

	return event
}

func join(t *testing.T, conn *websocket.Conn, playerID, gameID string) entity.Event {
	t.Helper()
	sendJSON(t, conn, map[string]any{"type": "join", "playerId": playerID, "gameId": gameID})
	return readEvent(t, conn)
}

func moveMsg(row, col int) map[string]any {
	return map[string]any{"type": "move", "row": row, "col": col}
}

func TestServer_Join(t *testing.T) {
	// Given: a running server
	url, _ := startTestServer(t)
	conn := dial(t, url)

	// When: the client joins a new game
	event := join(t, conn, entity.PlayerX, "g1")

	// Then: it receives the empty board with X to move
	assert.Equal(t, entity.EventUpdate, event.Type)
	require.NotNil(t, event.Board)
	assert.Equal(t, entity.Board{}, *event.Board)
	assert.Equal(t, entity.PlayerX, event.NextTurn)
}

func TestServer_ProtocolErrors(t *testing.T) {
	url, _ := startTestServer(t)

	t.Run("Move before join", func(t *testing.T) {
		conn := dial(t, url)

		sendJSON(t, conn, moveMsg(0, 0))

		event := readEvent(t, conn)
		assert.Equal(t, entity.EventError, event.Type)
		assert.Equal(t, "join a game first", event.Message)
	})

	t.Run("Malformed message keeps the connection open", func(t *testing.T) {
		conn := dial(t, url)

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
		event := readEvent(t, conn)
		assert.Equal(t, entity.EventError, event.Type)
		assert.Equal(t, "malformed message", event.Message)

		assert.Equal(t, entity.EventUpdate, join(t, conn, entity.PlayerX, "g-malformed").Type)
	})

	t.Run("Unknown message type", func(t *testing.T) {
		conn := dial(t, url)

		sendJSON(t, conn, map[string]any{"type": "chat"})

		event := readEvent(t, conn)
		assert.Equal(t, "unknown message type", event.Message)
	})

	t.Run("Join with an invalid player", func(t *testing.T) {
		conn := dial(t, url)

		event := join(t, conn, "Z", "g1")

		assert.Equal(t, entity.EventError, event.Type)
		assert.Contains(t, event.Message, "player must be X or O")
	})

	t.Run("Move outside the board", func(t *testing.T) {
		conn := dial(t, url)
		join(t, conn, entity.PlayerX, "g-range")

		sendJSON(t, conn, moveMsg(0, 3))

		event := readEvent(t, conn)
		assert.Equal(t, "invalid cell", event.Message)
	})
}

func TestServer_NotYourTurn(t *testing.T) {
	// Given: X and O in a fresh game
	url, pub := startTestServer(t)
	playerX := dial(t, url)
	playerO := dial(t, url)
	join(t, playerX, entity.PlayerX, "g1")
	join(t, playerO, entity.PlayerO, "g1")

	// When: O moves first
	sendJSON(t, playerO, moveMsg(1, 1))

	// Then: O alone is told it is not its turn and nothing is published
	event := readEvent(t, playerO)
	assert.Equal(t, entity.EventError, event.Type)
	assert.Equal(t, "not your turn", event.Message)
	assert.Equal(t, 0, pub.count())

	// And: X can still play
	sendJSON(t, playerX, moveMsg(1, 1))
	assert.Equal(t, entity.PlayerO, readEvent(t, playerX).NextTurn)
}

func TestServer_WinningGame(t *testing.T) {
	// Given: X and O joined to g1
	url, pub := startTestServer(t)
	playerX := dial(t, url)
	playerO := dial(t, url)
	join(t, playerX, entity.PlayerX, "g1")
	join(t, playerO, entity.PlayerO, "g1")

	plays := []struct {
		conn     *websocket.Conn
		row, col int
	}{
		{playerX, 0, 0},
		{playerO, 1, 1},
		{playerX, 0, 1},
		{playerO, 2, 2},
	}

	// When: four moves are played without a line
	for _, play := range plays {
		sendJSON(t, play.conn, moveMsg(play.row, play.col))
		for _, conn := range []*websocket.Conn{playerX, playerO} {
			assert.Equal(t, entity.EventUpdate, readEvent(t, conn).Type)
		}
	}

	// And: X completes the top row
	sendJSON(t, playerX, moveMsg(0, 2))

	// Then: both see the final update followed by the win
	expected := entity.Board{
		{entity.PlayerX, entity.PlayerX, entity.PlayerX},
		{"", entity.PlayerO, ""},
		{"", "", entity.PlayerO},
	}
	for _, conn := range []*websocket.Conn{playerX, playerO} {
		update := readEvent(t, conn)
		assert.Equal(t, entity.EventUpdate, update.Type)

		win := readEvent(t, conn)
		assert.Equal(t, entity.EventWin, win.Type)
		assert.Equal(t, entity.PlayerX, win.Winner)
		require.NotNil(t, win.Board)
		assert.Equal(t, expected, *win.Board)
	}

	assert.Equal(t, len(plays)+1, pub.count())
}

func TestServer_RejoinAfterDisconnect(t *testing.T) {
	// Given: X played a move and O disconnected
	url, _ := startTestServer(t)
	playerX := dial(t, url)
	playerO := dial(t, url)
	join(t, playerX, entity.PlayerX, "g1")
	join(t, playerO, entity.PlayerO, "g1")

	sendJSON(t, playerX, moveMsg(2, 0))
	readEvent(t, playerX)
	readEvent(t, playerO)
	require.NoError(t, playerO.Close())

	// When: O reconnects on a new connection
	rejoined := dial(t, url)
	event := join(t, rejoined, entity.PlayerO, "g1")

	// Then: the game is where it was left
	require.NotNil(t, event.Board)
	assert.Equal(t, entity.PlayerX, event.Board[2][0])
	assert.Equal(t, entity.PlayerO, event.NextTurn)

	// And: O can continue playing
	sendJSON(t, rejoined, moveMsg(1, 1))
	assert.Equal(t, entity.PlayerX, readEvent(t, rejoined).NextTurn)
}
