package httpserver

import (
	"errors"
	"net/http"

	"artisthub/artist-ms/internal/auth"
	"artisthub/artist-ms/internal/router"
	"artisthub/artist-ms/internal/user"
)

func registerAuthRoutes(routes *router.Router, deps Deps) {
	routes.Register(http.MethodPost, "/api/login", func(c *router.Context) router.Result {
		email, _ := c.BodyString("email")
		password, _ := c.BodyString("password")
		if email == "" || password == "" {
			return router.Error(http.StatusBadRequest, "Email and password are required")
		}

		u, sess, err := deps.Auth.Login(email, password)
		if err != nil {
			if errors.Is(err, user.ErrInvalidCredentials) {
				auditSafe(deps.Audit, email, "auth.login", "", "failed", "invalid credentials")
				return router.Error(http.StatusUnauthorized, "Invalid email or password")
			}
			auditSafe(deps.Audit, email, "auth.login", "", "failed", err.Error())
			return router.Error(http.StatusInternalServerError, "Login failed")
		}

		auditSafe(deps.Audit, u.Email, "auth.login", "", "success", "")
		return router.JSON(http.StatusOK, map[string]any{
			"success": true,
			"user":    u,
		}).WithCookie(auth.SessionCookie, sess.Token)
	})

	routes.Register(http.MethodPost, "/api/register", func(c *router.Context) router.Result {
		firstName, _ := c.BodyString("first_name")
		lastName, _ := c.BodyString("last_name")
		email, _ := c.BodyString("email")
		password, _ := c.BodyString("password")
		if firstName == "" || lastName == "" || email == "" || password == "" {
			return router.Error(http.StatusBadRequest, "First name, last name, email and password are required")
		}

		u := user.User{
			FirstName: firstName,
			LastName:  lastName,
			Email:     email,
		}
		if phone, ok := c.BodyString("phone"); ok {
			u.Phone = phone
		}
		if dob, ok := c.BodyString("dob"); ok {
			u.DOB = dob
		}
		if gender, ok := c.BodyString("gender"); ok {
			u.Gender = gender
		}
		if address, ok := c.BodyString("address"); ok {
			u.Address = address
		}

		id, err := deps.Auth.Register(u, password)
		if err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				return router.Error(http.StatusBadRequest, "Email already exists")
			}
			if errors.Is(err, auth.ErrWeakPassword) {
				return router.Error(http.StatusBadRequest, "Password does not meet the security policy")
			}
			auditSafe(deps.Audit, email, "auth.register", "", "failed", err.Error())
			return router.Error(http.StatusInternalServerError, "Registration failed")
		}

		auditSafe(deps.Audit, email, "auth.register", "", "success", "")
		return router.JSON(http.StatusCreated, map[string]any{"success": true, "id": id})
	})

	routes.Register(http.MethodPost, "/api/logout", func(c *router.Context) router.Result {
		if token := c.Cookies[auth.SessionCookie]; token != "" {
			deps.Auth.Logout(token)
		}
		if u, ok := currentUser(c); ok {
			auditSafe(deps.Audit, u.Email, "auth.logout", "", "success", "")
		}
		return router.JSON(http.StatusOK, map[string]any{"success": true}).
			WithExpiredCookie(auth.SessionCookie)
	})

	routes.Register(http.MethodGet, "/api/check-auth", func(c *router.Context) router.Result {
		u, ok := currentUser(c)
		if !ok {
			return router.JSON(http.StatusUnauthorized, map[string]any{"authenticated": false})
		}
		return router.JSON(http.StatusOK, map[string]any{"authenticated": true, "user": u})
	})

	routes.Register(http.MethodGet, "/api/sessions",
		auth.RequireRole(deps.Auth, func(c *router.Context) router.Result {
			return router.JSON(http.StatusOK, map[string]any{
				"success":  true,
				"sessions": deps.Auth.ListSessions(),
			})
		}, user.RoleSuperAdmin))

	routes.Register(http.MethodDelete, "/api/sessions/{id}",
		auth.RequireRole(deps.Auth, func(c *router.Context) router.Result {
			id := c.Params["id"]
			if !deps.Auth.RevokeSession(id) {
				return router.Error(http.StatusNotFound, "Session not found")
			}
			if u, ok := currentUser(c); ok {
				auditSafe(deps.Audit, u.Email, "session.revoke", id, "success", "")
			}
			return router.JSON(http.StatusOK, map[string]any{"success": true})
		}, user.RoleSuperAdmin))
}
