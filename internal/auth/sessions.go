package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// Session associates a bearer token with an authenticated user.
type Session struct {
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// SessionManager keeps sessions in memory and evicts expired ones
// with a background goroutine.
type SessionManager struct {
	mu           sync.Mutex
	sessions     map[string]Session
	ttl          time.Duration
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// NewSessionManager creates a session manager with the given TTL.
func NewSessionManager(ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	sm := &SessionManager{
		sessions:    make(map[string]Session),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}
	go sm.startCleanup()
	return sm
}

// Create issues a new session token for the given user.
func (sm *SessionManager) Create(userID uuid.UUID) Session {
	session := Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(sm.ttl),
	}

	sm.mu.Lock()
	sm.sessions[session.Token] = session
	sm.mu.Unlock()

	return session
}

// Get resolves a token to its session, failing for unknown or
// expired tokens.
func (sm *SessionManager) Get(token string) (Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, ok := sm.sessions[token]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if time.Now().After(session.ExpiresAt) {
		delete(sm.sessions, token)
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Delete removes a session, logging the user out.
func (sm *SessionManager) Delete(token string) {
	sm.mu.Lock()
	delete(sm.sessions, token)
	sm.mu.Unlock()
}

// ActiveSessions returns the number of currently tracked sessions.
func (sm *SessionManager) ActiveSessions() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}

func (sm *SessionManager) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sm.cleanupExpired()
		case <-sm.stopCleanup:
			return
		}
	}
}

func (sm *SessionManager) cleanupExpired() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	for token, session := range sm.sessions {
		if now.After(session.ExpiresAt) {
			delete(sm.sessions, token)
		}
	}
}

// Stop shuts down the cleanup goroutine.
func (sm *SessionManager) Stop() {
	sm.shutdownOnce.Do(func() {
		close(sm.stopCleanup)
	})
}
