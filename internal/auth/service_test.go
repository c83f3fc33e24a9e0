package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"artisthub/artist-ms/internal/session"
	"artisthub/artist-ms/internal/user"
)

type fakeUserStore struct {
	byID    map[int64]user.User
	byEmail map[string]user.User
	nextID  int64
	created []user.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    make(map[int64]user.User),
		byEmail: make(map[string]user.User),
		nextID:  1,
	}
}

func (f *fakeUserStore) add(u user.User) {
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

func (f *fakeUserStore) GetByID(id int64) (user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByEmail(email string) (user.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) Create(u user.User, password string) (int64, error) {
	u.ID = f.nextID
	f.nextID++
	f.add(u)
	f.created = append(f.created, u)
	return u.ID, nil
}

func (f *fakeUserStore) Authenticate(email, password string) (user.User, error) {
	u, ok := f.byEmail[email]
	if !ok || password != "secret" {
		return user.User{}, user.ErrInvalidCredentials
	}
	return u, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserStore, *session.Store) {
	t.Helper()
	users := newFakeUserStore()
	sessions := session.NewStore(time.Hour)
	svc, err := NewService(users, sessions)
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	return svc, users, sessions
}

func TestLoginOpensSession(t *testing.T) {
	svc, users, _ := newTestService(t)
	users.add(user.User{ID: 1, Email: "nina@example.com", Role: user.RoleArtistManager})

	u, sess, err := svc.Login("nina@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if u.ID != 1 {
		t.Fatalf("expected user 1, got %d", u.ID)
	}
	if sess.Role != user.RoleArtistManager || sess.UserID != 1 {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if _, ok := svc.ValidateSession(sess.Token); !ok {
		t.Fatalf("expected a live session after login")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, users, _ := newTestService(t)
	users.add(user.User{ID: 1, Email: "nina@example.com", Role: user.RoleArtist})

	if _, _, err := svc.Login("nina@example.com", "wrong"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login("ghost@example.com", "secret"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterForcesArtistRole(t *testing.T) {
	svc, users, _ := newTestService(t)

	id, err := svc.Register(user.User{Email: "new@example.com", FirstName: "New", Role: user.RoleSuperAdmin}, "Str0ng!Passw0rd")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected an id")
	}
	if got := users.created[0].Role; got != user.RoleArtist {
		t.Fatalf("expected forced artist role, got %q", got)
	}
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	svc, users, _ := newTestService(t)
	users.add(user.User{ID: 1, Email: "nina@example.com"})

	if _, err := svc.Register(user.User{Email: "nina@example.com"}, "Str0ng!Passw0rd"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, users, _ := newTestService(t)

	if _, err := svc.Register(user.User{Email: "new@example.com"}, "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if len(users.created) != 0 {
		t.Fatalf("expected no user created, got %d", len(users.created))
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"all classes present", "Str0ng!Passw0rd", true},
		{"too short", "Sh0rt!pw", false},
		{"too long", "Aa1!" + strings.Repeat("x", 125), false},
		{"no upper", "str0ng!passw0rd", false},
		{"no lower", "STR0NG!PASSW0RD", false},
		{"no digit", "Strong!Password", false},
		{"no special", "Str0ngPassw0rd1", false},
		{"surrounding whitespace", " Str0ng!Passw0rd ", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.ok && err != nil {
				t.Fatalf("ValidatePassword(%q) error: %v", tc.password, err)
			}
			if !tc.ok && !errors.Is(err, ErrWeakPassword) {
				t.Fatalf("ValidatePassword(%q) expected ErrWeakPassword, got %v", tc.password, err)
			}
		})
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	svc, users, _ := newTestService(t)
	users.add(user.User{ID: 1, Email: "nina@example.com", Role: user.RoleArtist})

	_, sess, err := svc.Login("nina@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	svc.Logout(sess.Token)
	if _, ok := svc.ValidateSession(sess.Token); ok {
		t.Fatalf("expected session gone after logout")
	}
	svc.Logout(sess.Token)
}

func TestUserFromSessionReadsFreshRecord(t *testing.T) {
	svc, users, _ := newTestService(t)
	users.add(user.User{ID: 1, Email: "nina@example.com", Role: user.RoleArtist})

	_, sess, err := svc.Login("nina@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	users.add(user.User{ID: 1, Email: "nina@example.com", Role: user.RoleArtistManager})

	u, got, err := svc.UserFromSession(sess.Token)
	if err != nil {
		t.Fatalf("UserFromSession() error: %v", err)
	}
	if u.Role != user.RoleArtistManager {
		t.Fatalf("expected fresh role from the store, got %q", u.Role)
	}
	if got.Role != user.RoleArtist {
		t.Fatalf("expected session to keep its login-time role, got %q", got.Role)
	}
}

func TestUserFromSessionEvictsOrphanedSession(t *testing.T) {
	svc, users, _ := newTestService(t)
	users.add(user.User{ID: 1, Email: "nina@example.com", Role: user.RoleArtist})

	_, sess, err := svc.Login("nina@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	delete(users.byID, 1)

	if _, _, err := svc.UserFromSession(sess.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for deleted user, got %v", err)
	}
	if _, ok := svc.ValidateSession(sess.Token); ok {
		t.Fatalf("expected orphaned session to be destroyed")
	}
}

func TestRevokeSession(t *testing.T) {
	svc, users, _ := newTestService(t)
	users.add(user.User{ID: 1, Email: "nina@example.com", Role: user.RoleArtist})

	_, sess, err := svc.Login("nina@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	views := svc.ListSessions()
	if len(views) != 1 {
		t.Fatalf("expected 1 session, got %d", len(views))
	}
	if !svc.RevokeSession(views[0].ID) {
		t.Fatalf("expected revoke to succeed")
	}
	if _, ok := svc.ValidateSession(sess.Token); ok {
		t.Fatalf("expected revoked session to be invalid")
	}
	if svc.RevokeSession("no-such-id") {
		t.Fatalf("expected revoke of unknown id to fail")
	}
}
