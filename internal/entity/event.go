package entity

const (
	EventUpdate = "update"
	EventError  = "error"
	EventWin    = "win"
	EventDraw   = "draw"
)

// Event is a server-to-client message.
type Event struct {
	Type     string `json:"type"`
	Board    *Board `json:"board,omitempty"`
	NextTurn string `json:"nextTurn,omitempty"`
	Winner   string `json:"winner,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Events are sent asynchronously, so each one carries its own copy of the board.

func NewUpdateEvent(board Board, nextTurn string) *Event {
	return &Event{Type: EventUpdate, Board: &board, NextTurn: nextTurn}
}

func NewWinEvent(board Board, winner string) *Event {
	return &Event{Type: EventWin, Board: &board, Winner: winner}
}

func NewDrawEvent(board Board) *Event {
	return &Event{Type: EventDraw, Board: &board}
}

func NewErrorEvent(err error) *Event {
	return &Event{Type: EventError, Message: err.Error()}
}
