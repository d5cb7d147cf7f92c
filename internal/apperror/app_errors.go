package apperror

import "errors"

// Rule violations and protocol errors reported back to clients. The error
// text is what the client sees in the "message" field of an error event.
var (
	ErrNotYourTurn        = errors.New("not your turn")
	ErrCellOccupied       = errors.New("cell occupied")
	ErrInvalidCell        = errors.New("invalid cell")
	ErrNotJoined          = errors.New("join a game first")
	ErrInvalidPlayer      = errors.New("player must be X or O")
	ErrInvalidGameID      = errors.New("game id is required")
	ErrMalformedMessage   = errors.New("malformed message")
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrUnknownSession     = errors.New("unknown session")
)

// IsRuleViolation reports whether err is a recoverable game-rule error.
func IsRuleViolation(err error) bool {
	return errors.Is(err, ErrNotYourTurn) ||
		errors.Is(err, ErrCellOccupied) ||
		errors.Is(err, ErrInvalidCell)
}
