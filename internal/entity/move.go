package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
)

// Origin tells the relay where a move came from. Only local moves are
// published to the broker.
type Origin int

const (
	OriginLocal Origin = iota
	OriginReplayed
)

func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginReplayed:
		return "replayed"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

type Move struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
}

// Validate checks the fields a move needs before it reaches the board.
func (that Move) Validate() error {
	if err := ValidateJoin(that.PlayerID, that.GameID); err != nil {
		return err
	}

	if !InBounds(that.Row, that.Col) {
		return fmt.Errorf("%w: row %d col %d", apperror.ErrInvalidCell, that.Row, that.Col)
	}

	return nil
}

// ValidateJoin checks the identifiers a connection binds to.
func ValidateJoin(playerID, gameID string) error {
	if gameID == "" {
		return apperror.ErrInvalidGameID
	}

	if !IsPlayer(playerID) {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidPlayer, playerID)
	}

	return nil
}
