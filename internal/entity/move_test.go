package entity

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/stretchr/testify/assert"
)

func TestMove_Validate(t *testing.T) {
	t.Run("Valid move", func(t *testing.T) {
		move := Move{GameID: "g1", PlayerID: PlayerX, Row: 2, Col: 0}
		assert.NoError(t, move.Validate())
	})

	t.Run("Missing game id", func(t *testing.T) {
		move := Move{PlayerID: PlayerX}
		assert.ErrorIs(t, move.Validate(), apperror.ErrInvalidGameID)
	})

	t.Run("Unknown player", func(t *testing.T) {
		move := Move{GameID: "g1", PlayerID: "Z"}
		assert.ErrorIs(t, move.Validate(), apperror.ErrInvalidPlayer)
	})

	t.Run("Out of range cell", func(t *testing.T) {
		move := Move{GameID: "g1", PlayerID: PlayerO, Row: 3, Col: -1}
		assert.ErrorIs(t, move.Validate(), apperror.ErrInvalidCell)
	})
}

func TestOrigin_String(t *testing.T) {
	assert.Equal(t, "local", OriginLocal.String())
	assert.Equal(t, "replayed", OriginReplayed.String())
	assert.Equal(t, "origin(7)", Origin(7).String())
}

func TestValidateJoin(t *testing.T) {
	assert.NoError(t, ValidateJoin(PlayerO, "g1"))
	assert.ErrorIs(t, ValidateJoin(PlayerX, ""), apperror.ErrInvalidGameID)
	assert.ErrorIs(t, ValidateJoin("spectator", "g1"), apperror.ErrInvalidPlayer)
}
