package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"artisthub/artist-ms/internal/auth"
	"artisthub/artist-ms/internal/router"
	"artisthub/artist-ms/internal/user"
)

func registerUserRoutes(routes *router.Router, deps Deps) {
	admin := func(h router.Handler) router.Handler {
		return auth.RequireRole(deps.Auth, h, user.RoleSuperAdmin)
	}

	routes.Register(http.MethodGet, "/api/users", admin(func(c *router.Context) router.Result {
		page, perPage := pageParams(c)
		users, err := deps.Users.List(page, perPage)
		if err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to list users")
		}
		total, err := deps.Users.Count()
		if err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to count users")
		}
		return router.JSON(http.StatusOK, map[string]any{
			"success":    true,
			"users":      users,
			"pagination": pagination(page, perPage, total),
		})
	}))

	routes.Register(http.MethodPost, "/api/users", admin(func(c *router.Context) router.Result {
		firstName, _ := c.BodyString("first_name")
		lastName, _ := c.BodyString("last_name")
		email, _ := c.BodyString("email")
		password, _ := c.BodyString("password")
		role, _ := c.BodyString("role")
		if firstName == "" || lastName == "" || email == "" || password == "" || role == "" {
			return router.Error(http.StatusBadRequest, "First name, last name, email, password and role are required")
		}
		if !user.ValidRole(role) {
			return router.Error(http.StatusBadRequest, "Invalid role")
		}
		if err := auth.ValidatePassword(password); err != nil {
			return router.Error(http.StatusBadRequest, "Password does not meet the security policy")
		}
		if _, err := deps.Users.GetByEmail(email); err == nil {
			return router.Error(http.StatusBadRequest, "Email already exists")
		} else if !errors.Is(err, user.ErrNotFound) {
			return router.Error(http.StatusInternalServerError, "Failed to create user")
		}

		u := user.User{FirstName: firstName, LastName: lastName, Email: email, Role: role}
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

		id, err := deps.Users.Create(u, password)
		if err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to create user")
		}
		if actor, ok := currentUser(c); ok {
			auditSafe(deps.Audit, actor.Email, "user.create", fmt.Sprintf("user:%d", id), "success", "role="+role)
		}
		return router.JSON(http.StatusCreated, map[string]any{"success": true, "id": id})
	}))

	routes.Register(http.MethodGet, "/api/users/{id}", admin(func(c *router.Context) router.Result {
		id, ok := pathID(c, "id")
		if !ok {
			return router.Error(http.StatusBadRequest, "Invalid user id")
		}
		u, err := deps.Users.GetByID(id)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return router.Error(http.StatusNotFound, "User not found")
			}
			return router.Error(http.StatusInternalServerError, "Failed to load user")
		}
		return router.JSON(http.StatusOK, map[string]any{"success": true, "user": u})
	}))

	routes.Register(http.MethodPut, "/api/users/{id}", admin(func(c *router.Context) router.Result {
		id, ok := pathID(c, "id")
		if !ok {
			return router.Error(http.StatusBadRequest, "Invalid user id")
		}

		params, errResult := userUpdateParams(c, deps, id, true)
		if errResult != nil {
			return *errResult
		}

		if err := deps.Users.Update(id, params); err != nil {
			switch {
			case errors.Is(err, user.ErrNoFields):
				return router.Error(http.StatusBadRequest, "No fields to update")
			case errors.Is(err, user.ErrNotFound):
				return router.Error(http.StatusNotFound, "User not found")
			default:
				return router.Error(http.StatusInternalServerError, "Failed to update user")
			}
		}
		if actor, ok := currentUser(c); ok {
			auditSafe(deps.Audit, actor.Email, "user.update", fmt.Sprintf("user:%d", id), "success", "")
		}
		return router.JSON(http.StatusOK, map[string]any{"success": true})
	}))

	routes.Register(http.MethodDelete, "/api/users/{id}", admin(func(c *router.Context) router.Result {
		id, ok := pathID(c, "id")
		if !ok {
			return router.Error(http.StatusBadRequest, "Invalid user id")
		}
		target, err := deps.Users.GetByID(id)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return router.Error(http.StatusNotFound, "User not found")
			}
			return router.Error(http.StatusInternalServerError, "Failed to load user")
		}

		if target.Role == user.RoleSuperAdmin {
			n, err := deps.Users.CountByRole(user.RoleSuperAdmin)
			if err != nil {
				return router.Error(http.StatusInternalServerError, "Failed to delete user")
			}
			if n <= 1 {
				if actor, ok := currentUser(c); ok {
					auditSafe(deps.Audit, actor.Email, "user.delete", fmt.Sprintf("user:%d", id), "denied", "last super_admin")
				}
				return router.Error(http.StatusBadRequest, "Cannot delete the last super admin")
			}
		}

		if err := deps.Users.Delete(id); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return router.Error(http.StatusNotFound, "User not found")
			}
			return router.Error(http.StatusInternalServerError, "Failed to delete user")
		}
		if actor, ok := currentUser(c); ok {
			auditSafe(deps.Audit, actor.Email, "user.delete", fmt.Sprintf("user:%d", id), "success", "")
		}
		return router.JSON(http.StatusOK, map[string]any{"success": true})
	}))

	routes.Register(http.MethodGet, "/api/profile",
		auth.RequireAuth(deps.Auth, func(c *router.Context) router.Result {
			u, ok := currentUser(c)
			if !ok {
				return router.Error(http.StatusUnauthorized, "authentication required")
			}
			return router.JSON(http.StatusOK, map[string]any{"success": true, "user": u})
		}))

	routes.Register(http.MethodPut, "/api/profile",
		auth.RequireAuth(deps.Auth, func(c *router.Context) router.Result {
			u, ok := currentUser(c)
			if !ok {
				return router.Error(http.StatusUnauthorized, "authentication required")
			}

			// Profile updates never touch the role, whatever the body says.
			params, errResult := userUpdateParams(c, deps, u.ID, false)
			if errResult != nil {
				return *errResult
			}

			if err := deps.Users.Update(u.ID, params); err != nil {
				switch {
				case errors.Is(err, user.ErrNoFields):
					return router.Error(http.StatusBadRequest, "No fields to update")
				case errors.Is(err, user.ErrNotFound):
					return router.Error(http.StatusNotFound, "User not found")
				default:
					return router.Error(http.StatusInternalServerError, "Failed to update profile")
				}
			}
			auditSafe(deps.Audit, u.Email, "profile.update", fmt.Sprintf("user:%d", u.ID), "success", "")
			return router.JSON(http.StatusOK, map[string]any{"success": true})
		}))
}

// userUpdateParams builds UpdateParams from whichever fields the body
// carries. Email changes are checked against other accounts; role changes
// are honored only when allowRole is set and the value is valid.
func userUpdateParams(c *router.Context, deps Deps, id int64, allowRole bool) (user.UpdateParams, *router.Result) {
	var p user.UpdateParams
	fail := func(status int, msg string) (user.UpdateParams, *router.Result) {
		r := router.Error(status, msg)
		return user.UpdateParams{}, &r
	}

	if v, ok := c.BodyString("first_name"); ok {
		p.FirstName = strPtr(v)
	}
	if v, ok := c.BodyString("last_name"); ok {
		p.LastName = strPtr(v)
	}
	if v, ok := c.BodyString("phone"); ok {
		p.Phone = strPtr(v)
	}
	if v, ok := c.BodyString("dob"); ok {
		p.DOB = strPtr(v)
	}
	if v, ok := c.BodyString("gender"); ok {
		p.Gender = strPtr(v)
	}
	if v, ok := c.BodyString("address"); ok {
		p.Address = strPtr(v)
	}
	if v, ok := c.BodyString("password"); ok && v != "" {
		if err := auth.ValidatePassword(v); err != nil {
			return fail(http.StatusBadRequest, "Password does not meet the security policy")
		}
		p.Password = strPtr(v)
	}
	if v, ok := c.BodyString("role"); ok && allowRole {
		if !user.ValidRole(v) {
			return fail(http.StatusBadRequest, "Invalid role")
		}
		p.Role = strPtr(v)
	}
	if v, ok := c.BodyString("email"); ok {
		if v == "" {
			return fail(http.StatusBadRequest, "Email must not be empty")
		}
		existing, err := deps.Users.GetByEmail(v)
		if err == nil && existing.ID != id {
			return fail(http.StatusBadRequest, "Email already exists")
		}
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return fail(http.StatusInternalServerError, "Failed to update user")
		}
		p.Email = strPtr(v)
	}

	return p, nil
}
