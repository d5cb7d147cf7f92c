package entity

import "time"

// Peer is a live client connection able to receive events.
type Peer interface {
	ID() string
	Send(event *Event)
}

// Session is one game's mutable state. It is owned by a single instance and
// is only touched from that instance's dispatcher loop.
type Session struct {
	ID       string
	Board    Board
	NextTurn string
	Players  map[string]Peer

	LastActive time.Time
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		NextTurn:   PlayerX,
		Players:    make(map[string]Peer),
		LastActive: now,
	}
}

// Broadcast sends the event to every attached player.
func (that *Session) Broadcast(event *Event) {
	for _, peer := range that.Players {
		peer.Send(event)
	}
}

// SendTo sends the event to one player if attached.
func (that *Session) SendTo(playerID string, event *Event) {
	if peer, ok := that.Players[playerID]; ok {
		peer.Send(event)
	}
}

func (that *Session) IsIdle(now time.Time, ttl time.Duration) bool {
	return len(that.Players) == 0 && now.Sub(that.LastActive) >= ttl
}
