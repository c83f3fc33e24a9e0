package auth

import (
	"net/http"

	"artisthub/artist-ms/internal/router"
	"artisthub/artist-ms/internal/session"
)

// SessionCookie is the cookie the browser client sends on every request.
const SessionCookie = "session_id"

// SessionValidator is the slice of the auth service the gates need.
type SessionValidator interface {
	ValidateSession(token string) (session.Session, bool)
}

// RequireAuth wraps a handler so it only runs for a live session. The
// session's token and role are stamped onto the context for the handler.
func RequireAuth(v SessionValidator, next router.Handler) router.Handler {
	return func(c *router.Context) router.Result {
		sess, ok := v.ValidateSession(c.Cookies[SessionCookie])
		if !ok {
			return router.Error(http.StatusUnauthorized, "authentication required")
		}
		c.SessionToken = sess.Token
		c.SessionRole = sess.Role
		return next(c)
	}
}

// RequireRole additionally checks the role recorded on the session. The
// check deliberately reads the login-time snapshot, not the database: a role
// change applies to new logins only.
func RequireRole(v SessionValidator, next router.Handler, roles ...string) router.Handler {
	return func(c *router.Context) router.Result {
		sess, ok := v.ValidateSession(c.Cookies[SessionCookie])
		if !ok {
			return router.Error(http.StatusUnauthorized, "authentication required")
		}
		for _, role := range roles {
			if sess.Role == role {
				c.SessionToken = sess.Token
				c.SessionRole = sess.Role
				return next(c)
			}
		}
		return router.Error(http.StatusForbidden, "insufficient permissions")
	}
}
