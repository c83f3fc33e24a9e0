// Package session holds the in-memory login sessions referenced by the
// session_id cookie. Sessions are process-local and lost on restart; expired
// entries are evicted lazily, on the read that discovers them.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is a live login. Role is a snapshot taken at login time and is
// never refreshed; a role change in the database takes effect only after the
// user logs in again.
type Session struct {
	ID        string
	Token     string
	UserID    int64
	Role      string
	CreatedAt time.Time
	ExpiresAt time.Time
	Active    bool
}

// View is the admin-facing projection of a session. It deliberately omits the
// token so that listing sessions cannot be used to hijack one.
type View struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Store struct {
	ttl     time.Duration
	nowFunc func() time.Time

	mu       sync.RWMutex
	sessions map[string]Session
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		nowFunc:  time.Now,
		sessions: make(map[string]Session),
	}
}

// Create records a new session for the user and returns it. The token is an
// unpredictable opaque value suitable for use as a cookie.
func (s *Store) Create(userID int64, role string) Session {
	now := s.nowFunc()
	sess := Session{
		ID:        uuid.NewString(),
		Token:     uuid.NewString(),
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Active:    true,
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	return sess
}

// Validate fails closed: an empty, unknown, inactive, or expired token yields
// (zero, false). Expired sessions are removed as a side effect.
func (s *Store) Validate(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}

	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok || !sess.Active {
		return Session{}, false
	}

	if s.nowFunc().After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return Session{}, false
	}

	return sess, true
}

// Destroy removes the session. Destroying an unknown or already-destroyed
// token is a no-op.
func (s *Store) Destroy(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return
	}
	sess.Active = false
	delete(s.sessions, token)
}

// ListViews returns the active sessions, evicting any that expired while
// nobody was looking.
func (s *Store) ListViews() []View {
	now := s.nowFunc()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]View, 0, len(s.sessions))
	for token, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, token)
			continue
		}
		out = append(out, View{
			ID:        sess.ID,
			UserID:    sess.UserID,
			Role:      sess.Role,
			CreatedAt: sess.CreatedAt,
			ExpiresAt: sess.ExpiresAt,
		})
	}
	return out
}

// RevokeByID destroys the session with the given admin-facing ID. Returns
// false when no such session exists.
func (s *Store) RevokeByID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, sess := range s.sessions {
		if sess.ID == id {
			delete(s.sessions, token)
			return true
		}
	}
	return false
}
