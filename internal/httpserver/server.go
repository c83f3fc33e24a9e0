// Package httpserver wires the route table, resolves the session cookie to a
// user on every request, and serves the browser client alongside the JSON
// API.
package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"artisthub/artist-ms/internal/artist"
	"artisthub/artist-ms/internal/auth"
	"artisthub/artist-ms/internal/config"
	"artisthub/artist-ms/internal/music"
	"artisthub/artist-ms/internal/router"
	"artisthub/artist-ms/internal/session"
	"artisthub/artist-ms/internal/user"
)

type AuthService interface {
	Login(email, password string) (user.User, session.Session, error)
	Register(u user.User, password string) (int64, error)
	Logout(token string)
	ValidateSession(token string) (session.Session, bool)
	UserFromSession(token string) (user.User, session.Session, error)
	ListSessions() []session.View
	RevokeSession(id string) bool
}

type UserStore interface {
	GetByID(id int64) (user.User, error)
	GetByEmail(email string) (user.User, error)
	List(page, perPage int) ([]user.User, error)
	Count() (int, error)
	CountByRole(role string) (int, error)
	Create(u user.User, password string) (int64, error)
	Update(id int64, p user.UpdateParams) error
	Delete(id int64) error
}

type ArtistStore interface {
	Create(a artist.Artist) (int64, error)
	GetByID(id int64) (artist.Artist, error)
	List(page, perPage int) ([]artist.Artist, error)
	Search(term string, page, perPage int) ([]artist.Artist, error)
	All() ([]artist.Artist, error)
	Count() (int, error)
	Update(id int64, p artist.UpdateParams) error
	Delete(id int64) error
}

type MusicStore interface {
	Create(s music.Song) (int64, error)
	GetByID(id int64) (music.Song, error)
	List(page, perPage int) ([]music.Song, error)
	Search(term string, page, perPage int) ([]music.Song, error)
	ByArtist(artistID int64, page, perPage int) ([]music.Song, error)
	ByGenre(genre string, page, perPage int) ([]music.Song, error)
	Count() (int, error)
	CountByArtist(artistID int64) (int, error)
	CountByGenre(genre string) (int, error)
	Update(id int64, p music.UpdateParams) error
	Delete(id int64) error
}

type AuditLogger interface {
	Log(actor, action, target, outcome, detail string) error
}

type Deps struct {
	Auth      AuthService
	Users     UserStore
	Artists   ArtistStore
	Music     MusicStore
	Audit     AuditLogger
	ClientDir string
	Logger    *slog.Logger
}

type Server struct {
	httpServer *http.Server
}

func New(cfg config.HTTPConfig, deps Deps) *Server {
	handler := NewHandler(deps)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      loggingMiddleware(deps.Logger, handler),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// NewHandler builds the route table and returns the dispatching handler.
func NewHandler(deps Deps) http.Handler {
	routes := router.New()
	registerAuthRoutes(routes, deps)
	registerUserRoutes(routes, deps)
	registerArtistRoutes(routes, deps)
	registerMusicRoutes(routes, deps)

	return &dispatcher{routes: routes, deps: deps}
}

type dispatcher struct {
	routes *router.Router
	deps   Deps
}

func (d *dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/static/") {
		d.serveStatic(w, r)
		return
	}

	c := router.BuildContext(r)
	d.resolveUser(c)

	if h, params, ok := d.routes.Match(c.Method, c.Path); ok {
		c.Params = params
		h(c).Write(w)
		return
	}

	if strings.HasPrefix(c.Path, "/api/") {
		router.Error(http.StatusNotFound, "not found").Write(w)
		return
	}
	d.servePage(w, r)
}

// resolveUser turns the session cookie into a fresh user record for handlers
// that read ctx.User. The gates do their own validation; this is best-effort
// and never fails the request.
func (d *dispatcher) resolveUser(c *router.Context) {
	if d.deps.Auth == nil {
		return
	}
	token := c.Cookies[auth.SessionCookie]
	if token == "" {
		return
	}
	u, sess, err := d.deps.Auth.UserFromSession(token)
	if err != nil {
		return
	}
	c.User = u
	c.SessionToken = sess.Token
	c.SessionRole = sess.Role
}

func (d *dispatcher) serveStatic(w http.ResponseWriter, r *http.Request) {
	rel := path.Clean(strings.TrimPrefix(r.URL.Path, "/static/"))
	if rel == "." || strings.HasPrefix(rel, "..") {
		http.NotFound(w, r)
		return
	}
	full := filepath.Join(d.deps.ClientDir, "static", filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, full)
}

// servePage serves the HTML client: / maps to index.html and any other path
// ending in .html is looked up under the client dir.
func (d *dispatcher) servePage(w http.ResponseWriter, r *http.Request) {
	clean := path.Clean(r.URL.Path)
	var rel string
	switch {
	case clean == "/" || clean == ".":
		rel = "index.html"
	case strings.HasSuffix(clean, ".html") && !strings.Contains(clean, ".."):
		rel = strings.TrimPrefix(clean, "/")
	default:
		http.NotFound(w, r)
		return
	}

	full := filepath.Join(d.deps.ClientDir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, full)
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if reqID == "" {
			reqID = newRequestID()
		}
		w.Header().Set("X-Request-Id", reqID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if log != nil {
			log.Info("http request",
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}
	})
}

func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

func auditSafe(a AuditLogger, actor, action, target, outcome, detail string) {
	if a == nil {
		return
	}
	_ = a.Log(actor, action, target, outcome, detail)
}
