package main

import (
	"sync"
	"time"
)

const maxSessions = 100

// SessionIdleTimeout is how long an empty session survives before the
// reaper removes it. Variable so tests can shorten it.
var SessionIdleTimeout = 2 * time.Minute

// Session represents a game session that players can join
type Session struct {
	ID        string
	Name      string
	Mode      GameMode
	Game      *Game
	lastActive time.Time
}

// SessionManager handles creation, lookup and reaping of sessions
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a new SessionManager and starts its reaper
func NewSessionManager() *SessionManager {
	sm := &SessionManager{
		sessions: make(map[string]*Session),
	}
	go sm.reap()
	return sm
}

// CreateSession creates a new game session. Returns nil if limit reached.
func (sm *SessionManager) CreateSession(name string, mode GameMode, db *DB, analytics *Analytics) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= maxSessions {
		return nil
	}

	id := GenerateUUID()
	game := NewGame(DefaultConfig(mode), db, analytics)
	sess := &Session{
		ID:         id,
		Name:       name,
		Mode:       mode,
		Game:       game,
		lastActive: time.Now(),
	}
	sm.sessions[id] = sess
	if analytics != nil {
		analytics.Track(EvtSessionStart, 0, id, "")
	}
	go game.Run()
	return sess
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// MarkActive refreshes a session's idle timer
func (sm *SessionManager) MarkActive(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sess, ok := sm.sessions[id]; ok {
		sess.lastActive = time.Now()
	}
}

// RemovePlayer removes a player from a session
func (sm *SessionManager) RemovePlayer(sessionID, playerID string) {
	sm.mu.RLock()
	sess, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()
	if !ok {
		return
	}
	sess.Game.RemovePlayer(playerID)
}

// reap periodically removes sessions that have sat empty past the idle
// timeout
func (sm *SessionManager) reap() {
	for {
		time.Sleep(SessionIdleTimeout / 2)

		now := time.Now()
		sm.mu.Lock()
		for id, sess := range sm.sessions {
			if sess.Game.PlayerCount() > 0 {
				sess.lastActive = now
				continue
			}
			if now.Sub(sess.lastActive) >= SessionIdleTimeout {
				if sess.Game.analytics != nil {
					sess.Game.analytics.Track(EvtSessionEnd, 0, id, "")
				}
				sess.Game.Stop()
				delete(sm.sessions, id)
			}
		}
		sm.mu.Unlock()
	}
}

// ListSessions returns info about all active sessions
func (sm *SessionManager) ListSessions() []SessionInfo {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	list := make([]SessionInfo, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		list = append(list, SessionInfo{
			ID:      sess.ID,
			Name:    sess.Name,
			Mode:    int(sess.Mode),
			Players: sess.Game.PlayerCount(),
		})
	}
	return list
}
