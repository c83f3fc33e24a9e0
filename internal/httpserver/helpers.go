package httpserver

import (
	"strconv"

	"artisthub/artist-ms/internal/router"
	"artisthub/artist-ms/internal/user"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// pageParams reads page/per_page query values, clamping nonsense to sane
// defaults.
func pageParams(c *router.Context) (page, perPage int) {
	page = intQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage = intQuery(c, "per_page", defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func intQuery(c *router.Context, key string, fallback int) int {
	raw, ok := c.Query[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func pagination(page, perPage, total int) map[string]any {
	totalPages := 0
	if total > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return map[string]any{
		"page":        page,
		"per_page":    perPage,
		"total":       total,
		"total_pages": totalPages,
	}
}

// pathID parses a numeric path parameter. The second return is false for
// anything that is not a positive integer.
func pathID(c *router.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params[name], 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// currentUser returns the fresh user record resolved from the session
// cookie. Gated handlers can rely on it being present.
func currentUser(c *router.Context) (user.User, bool) {
	u, ok := c.User.(user.User)
	return u, ok
}

func strPtr(s string) *string { return &s }
