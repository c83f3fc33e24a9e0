// Package auth ties user credentials to login sessions and supplies the
// role gates the HTTP layer wraps around protected routes.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"artisthub/artist-ms/internal/session"
	"artisthub/artist-ms/internal/user"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrNoSession    = errors.New("no valid session")
	ErrWeakPassword = errors.New("weak password")
)

const (
	minPasswordLength = 12
	maxPasswordLength = 128
)

// UserStore is the slice of the user store the service needs.
type UserStore interface {
	GetByID(id int64) (user.User, error)
	GetByEmail(email string) (user.User, error)
	Create(u user.User, password string) (int64, error)
	Authenticate(email, password string) (user.User, error)
}

type Service struct {
	users    UserStore
	sessions *session.Store
}

func NewService(users UserStore, sessions *session.Store) (*Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	return &Service{users: users, sessions: sessions}, nil
}

// Login verifies credentials and opens a session. The session records the
// user's role as of this moment.
func (s *Service) Login(email, password string) (user.User, session.Session, error) {
	u, err := s.users.Authenticate(email, password)
	if err != nil {
		return user.User{}, session.Session{}, err
	}
	return u, s.sessions.Create(u.ID, u.Role), nil
}

// ValidatePassword enforces the account password policy: no surrounding
// whitespace, 12 to 128 characters, at least one upper-case letter, one
// lower-case letter, one digit and one special character.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) != password {
		return ErrWeakPassword
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrWeakPassword
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a self-service account. Self-registered users always get
// the artist role; privileged roles are assigned through user management.
func (s *Service) Register(u user.User, password string) (int64, error) {
	if err := ValidatePassword(password); err != nil {
		return 0, err
	}
	if _, err := s.users.GetByEmail(u.Email); err == nil {
		return 0, ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return 0, fmt.Errorf("check email: %w", err)
	}

	u.Role = user.RoleArtist
	return s.users.Create(u, password)
}

// Logout destroys the session; an unknown token is a no-op.
func (s *Service) Logout(token string) {
	s.sessions.Destroy(token)
}

// ValidateSession reports whether the token names a live session.
func (s *Service) ValidateSession(token string) (session.Session, bool) {
	return s.sessions.Validate(token)
}

// UserFromSession resolves the token to the current database record of the
// logged-in user. Note the asymmetry: the returned user carries the role as
// it is now, while the session keeps the role from login time.
func (s *Service) UserFromSession(token string) (user.User, session.Session, error) {
	sess, ok := s.sessions.Validate(token)
	if !ok {
		return user.User{}, session.Session{}, ErrNoSession
	}
	u, err := s.users.GetByID(sess.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.sessions.Destroy(token)
			return user.User{}, session.Session{}, ErrNoSession
		}
		return user.User{}, session.Session{}, fmt.Errorf("load session user: %w", err)
	}
	return u, sess, nil
}

// ListSessions returns the active sessions for admin inspection.
func (s *Service) ListSessions() []session.View {
	return s.sessions.ListViews()
}

// RevokeSession force-logs-out the session with the given ID.
func (s *Service) RevokeSession(id string) bool {
	return s.sessions.RevokeByID(id)
}
