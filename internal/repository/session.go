package repository

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

// SessionRegistry keeps the sessions of one server instance in memory.
// It is not safe for concurrent use; the dispatcher loop is its only caller.
type SessionRegistry struct {
	sessions map[string]*entity.Session
	now      func() time.Time
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*entity.Session),
		now:      time.Now,
	}
}

// GetByID returns the session or apperror.ErrUnknownSession.
func (that *SessionRegistry) GetByID(gameID string) (*entity.Session, error) {
	session, ok := that.sessions[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownSession, gameID)
	}

	return session, nil
}

// GetOrCreate returns the session, creating an empty one with X to move.
func (that *SessionRegistry) GetOrCreate(gameID string) *entity.Session {
	if session, ok := that.sessions[gameID]; ok {
		return session
	}

	session := entity.NewSession(gameID, that.now())
	that.sessions[gameID] = session

	return session
}

// Attach binds the peer to the player slot. A later join for the same slot
// replaces the earlier connection.
func (that *SessionRegistry) Attach(session *entity.Session, playerID string, peer entity.Peer) {
	session.Players[playerID] = peer
	that.Touch(session)
}

// Detach removes the slot binding if it still belongs to peer, so a stale
// connection closing cannot evict the player that replaced it. The session
// and its board stay.
func (that *SessionRegistry) Detach(session *entity.Session, playerID string, peer entity.Peer) bool {
	bound, ok := session.Players[playerID]
	if !ok || bound.ID() != peer.ID() {
		return false
	}

	delete(session.Players, playerID)
	that.Touch(session)

	return true
}

func (that *SessionRegistry) Touch(session *entity.Session) {
	session.LastActive = that.now()
}

// EvictIdle drops sessions that have no players and no activity for ttl.
func (that *SessionRegistry) EvictIdle(ttl time.Duration) []string {
	now := that.now()

	var evicted []string
	for id, session := range that.sessions {
		if session.IsIdle(now, ttl) {
			delete(that.sessions, id)
			evicted = append(evicted, id)
		}
	}

	return evicted
}

func (that *SessionRegistry) Len() int {
	return len(that.sessions)
}
