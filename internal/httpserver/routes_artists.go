package httpserver

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"artisthub/artist-ms/internal/artist"
	"artisthub/artist-ms/internal/auth"
	"artisthub/artist-ms/internal/router"
	"artisthub/artist-ms/internal/user"
)

func registerArtistRoutes(routes *router.Router, deps Deps) {
	anyRole := func(h router.Handler) router.Handler {
		return auth.RequireRole(deps.Auth, h, user.RoleSuperAdmin, user.RoleArtistManager, user.RoleArtist)
	}
	manager := func(h router.Handler) router.Handler {
		return auth.RequireRole(deps.Auth, h, user.RoleArtistManager)
	}

	routes.Register(http.MethodGet, "/api/artists", anyRole(func(c *router.Context) router.Result {
		page, perPage := pageParams(c)

		var (
			artists []artist.Artist
			err     error
		)
		if term := strings.TrimSpace(c.Query["search"]); term != "" {
			artists, err = deps.Artists.Search(term, page, perPage)
		} else {
			artists, err = deps.Artists.List(page, perPage)
		}
		if err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to list artists")
		}
		total, err := deps.Artists.Count()
		if err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to count artists")
		}
		return router.JSON(http.StatusOK, map[string]any{
			"success":    true,
			"artists":    artists,
			"pagination": pagination(page, perPage, total),
		})
	}))

	routes.Register(http.MethodPost, "/api/artists", manager(func(c *router.Context) router.Result {
		name, _ := c.BodyString("name")
		if strings.TrimSpace(name) == "" {
			return router.Error(http.StatusBadRequest, "Artist name is required")
		}

		a := artist.Artist{Name: name}
		if dob, ok := c.BodyString("dob"); ok {
			a.DOB = dob
		}
		if gender, ok := c.BodyString("gender"); ok {
			a.Gender = gender
		}
		if address, ok := c.BodyString("address"); ok {
			a.Address = address
		}
		if year, ok := c.BodyInt("first_release_year"); ok {
			a.FirstReleaseYear = year
		}
		if albums, ok := c.BodyInt("no_of_albums_released"); ok {
			a.AlbumsReleased = albums
		}

		id, err := deps.Artists.Create(a)
		if err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to create artist")
		}
		if actor, ok := currentUser(c); ok {
			auditSafe(deps.Audit, actor.Email, "artist.create", fmt.Sprintf("artist:%d", id), "success", "")
		}
		return router.JSON(http.StatusCreated, map[string]any{"success": true, "id": id})
	}))

	// Export registers before the {id} template but would win either way:
	// literals always beat templates.
	routes.Register(http.MethodGet, "/api/artists/export", manager(func(c *router.Context) router.Result {
		artists, err := deps.Artists.All()
		if err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to export artists")
		}
		if len(artists) == 0 {
			return router.Error(http.StatusNotFound, "No artists to export")
		}

		var buf bytes.Buffer
		if err := artist.WriteCSV(&buf, artists); err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to export artists")
		}
		return router.Raw(http.StatusOK, "text/csv", buf.Bytes()).
			WithHeader("Content-Disposition", `attachment; filename=artists.csv`)
	}))

	routes.Register(http.MethodPost, "/api/artists/import", manager(func(c *router.Context) router.Result {
		var data []byte
		if f, ok := c.Files["csv_file"]; ok {
			data = f.Content
		} else if raw, ok := c.Form["csv_file"]; ok {
			data = []byte(raw)
		}
		if len(data) == 0 {
			return router.Error(http.StatusBadRequest, "CSV file is required")
		}

		created, err := artist.ImportCSV(deps.Artists, bytes.NewReader(data))
		if err != nil {
			return router.Error(http.StatusBadRequest, fmt.Sprintf("Import failed: %v", err))
		}
		if actor, ok := currentUser(c); ok {
			auditSafe(deps.Audit, actor.Email, "artist.import", "", "success", fmt.Sprintf("created=%d", created))
		}
		return router.JSON(http.StatusOK, map[string]any{"success": true, "imported": created})
	}))

	routes.Register(http.MethodGet, "/api/artists/{id}",
		auth.RequireRole(deps.Auth, func(c *router.Context) router.Result {
			id, ok := pathID(c, "id")
			if !ok {
				return router.Error(http.StatusBadRequest, "Invalid artist id")
			}
			a, err := deps.Artists.GetByID(id)
			if err != nil {
				if errors.Is(err, artist.ErrNotFound) {
					return router.Error(http.StatusNotFound, "Artist not found")
				}
				return router.Error(http.StatusInternalServerError, "Failed to load artist")
			}
			return router.JSON(http.StatusOK, map[string]any{"success": true, "artist": a})
		}, user.RoleSuperAdmin, user.RoleArtistManager))

	routes.Register(http.MethodPut, "/api/artists/{id}", manager(func(c *router.Context) router.Result {
		id, ok := pathID(c, "id")
		if !ok {
			return router.Error(http.StatusBadRequest, "Invalid artist id")
		}

		var p artist.UpdateParams
		if name, ok := c.BodyString("name"); ok {
			if strings.TrimSpace(name) == "" {
				return router.Error(http.StatusBadRequest, "Artist name must not be empty")
			}
			p.Name = strPtr(name)
		}
		if dob, ok := c.BodyString("dob"); ok {
			p.DOB = strPtr(dob)
		}
		if gender, ok := c.BodyString("gender"); ok {
			p.Gender = strPtr(gender)
		}
		if address, ok := c.BodyString("address"); ok {
			p.Address = strPtr(address)
		}
		if year, ok := c.BodyInt("first_release_year"); ok {
			p.FirstReleaseYear = &year
		}
		if albums, ok := c.BodyInt("no_of_albums_released"); ok {
			p.AlbumsReleased = &albums
		}

		if err := deps.Artists.Update(id, p); err != nil {
			switch {
			case errors.Is(err, artist.ErrNoFields):
				return router.Error(http.StatusBadRequest, "No fields to update")
			case errors.Is(err, artist.ErrNotFound):
				return router.Error(http.StatusNotFound, "Artist not found")
			default:
				return router.Error(http.StatusInternalServerError, "Failed to update artist")
			}
		}
		if actor, ok := currentUser(c); ok {
			auditSafe(deps.Audit, actor.Email, "artist.update", fmt.Sprintf("artist:%d", id), "success", "")
		}
		return router.JSON(http.StatusOK, map[string]any{"success": true})
	}))

	routes.Register(http.MethodDelete, "/api/artists/{id}", manager(func(c *router.Context) router.Result {
		id, ok := pathID(c, "id")
		if !ok {
			return router.Error(http.StatusBadRequest, "Invalid artist id")
		}
		if err := deps.Artists.Delete(id); err != nil {
			if errors.Is(err, artist.ErrNotFound) {
				return router.Error(http.StatusNotFound, "Artist not found")
			}
			return router.Error(http.StatusInternalServerError, "Failed to delete artist")
		}
		if actor, ok := currentUser(c); ok {
			auditSafe(deps.Audit, actor.Email, "artist.delete", fmt.Sprintf("artist:%d", id), "success", "")
		}
		return router.JSON(http.StatusOK, map[string]any{"success": true})
	}))
}
