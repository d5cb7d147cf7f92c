package websocket

const (
	messageTypeJoin = "join"
	messageTypeMove = "move"
)

// Message is a client-to-server request. A join carries the identifiers;
// a move carries only the cell, the rest comes from the connection.
type Message struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId,omitempty"`
	GameID   string `json:"gameId,omitempty"`
	Row      *int   `json:"row,omitempty"`
	Col      *int   `json:"col,omitempty"`
}
