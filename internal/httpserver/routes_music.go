package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"artisthub/artist-ms/internal/artist"
	"artisthub/artist-ms/internal/auth"
	"artisthub/artist-ms/internal/music"
	"artisthub/artist-ms/internal/router"
	"artisthub/artist-ms/internal/user"
)

func registerMusicRoutes(routes *router.Router, deps Deps) {
	anyRole := func(h router.Handler) router.Handler {
		return auth.RequireRole(deps.Auth, h, user.RoleSuperAdmin, user.RoleArtistManager, user.RoleArtist)
	}
	artistOnly := func(h router.Handler) router.Handler {
		return auth.RequireRole(deps.Auth, h, user.RoleArtist)
	}

	routes.Register(http.MethodGet, "/api/music", anyRole(func(c *router.Context) router.Result {
		page, perPage := pageParams(c)

		var (
			songs []music.Song
			err   error
		)
		if term := strings.TrimSpace(c.Query["search"]); term != "" {
			songs, err = deps.Music.Search(term, page, perPage)
		} else {
			songs, err = deps.Music.List(page, perPage)
		}
		if err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to list songs")
		}
		total, err := deps.Music.Count()
		if err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to count songs")
		}
		return router.JSON(http.StatusOK, map[string]any{
			"success":    true,
			"music":      songs,
			"pagination": pagination(page, perPage, total),
		})
	}))

	routes.Register(http.MethodGet, "/api/music/genre/{genre}", anyRole(func(c *router.Context) router.Result {
		genre := c.Params["genre"]
		if !music.ValidGenre(genre) {
			return router.Error(http.StatusBadRequest, "Invalid genre")
		}
		page, perPage := pageParams(c)
		songs, err := deps.Music.ByGenre(genre, page, perPage)
		if err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to list songs")
		}
		total, err := deps.Music.CountByGenre(genre)
		if err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to count songs")
		}
		return router.JSON(http.StatusOK, map[string]any{
			"success":    true,
			"music":      songs,
			"pagination": pagination(page, perPage, total),
		})
	}))

	routes.Register(http.MethodGet, "/api/music/{id}", anyRole(func(c *router.Context) router.Result {
		id, ok := pathID(c, "id")
		if !ok {
			return router.Error(http.StatusBadRequest, "Invalid song id")
		}
		song, err := deps.Music.GetByID(id)
		if err != nil {
			if errors.Is(err, music.ErrNotFound) {
				return router.Error(http.StatusNotFound, "Song not found")
			}
			return router.Error(http.StatusInternalServerError, "Failed to load song")
		}
		return router.JSON(http.StatusOK, map[string]any{"success": true, "song": song})
	}))

	routes.Register(http.MethodPut, "/api/music/{id}", artistOnly(func(c *router.Context) router.Result {
		id, ok := pathID(c, "id")
		if !ok {
			return router.Error(http.StatusBadRequest, "Invalid song id")
		}
		song, err := deps.Music.GetByID(id)
		if err != nil {
			if errors.Is(err, music.ErrNotFound) {
				return router.Error(http.StatusNotFound, "Song not found")
			}
			return router.Error(http.StatusInternalServerError, "Failed to load song")
		}
		u, ok := currentUser(c)
		if !ok || song.ArtistID != u.ID {
			return router.Error(http.StatusForbidden, "You can only modify your own songs")
		}

		var p music.UpdateParams
		if title, ok := c.BodyString("title"); ok {
			if strings.TrimSpace(title) == "" {
				return router.Error(http.StatusBadRequest, "Song title must not be empty")
			}
			p.Title = strPtr(title)
		}
		if album, ok := c.BodyString("album_name"); ok {
			p.AlbumName = strPtr(album)
		}
		if genre, ok := c.BodyString("genre"); ok {
			if !music.ValidGenre(genre) {
				return router.Error(http.StatusBadRequest, "Invalid genre")
			}
			p.Genre = strPtr(genre)
		}

		if err := deps.Music.Update(id, p); err != nil {
			switch {
			case errors.Is(err, music.ErrNoFields):
				return router.Error(http.StatusBadRequest, "No fields to update")
			case errors.Is(err, music.ErrNotFound):
				return router.Error(http.StatusNotFound, "Song not found")
			default:
				return router.Error(http.StatusInternalServerError, "Failed to update song")
			}
		}
		auditSafe(deps.Audit, u.Email, "music.update", fmt.Sprintf("song:%d", id), "success", "")
		return router.JSON(http.StatusOK, map[string]any{"success": true})
	}))

	routes.Register(http.MethodDelete, "/api/music/{id}", artistOnly(func(c *router.Context) router.Result {
		id, ok := pathID(c, "id")
		if !ok {
			return router.Error(http.StatusBadRequest, "Invalid song id")
		}
		song, err := deps.Music.GetByID(id)
		if err != nil {
			if errors.Is(err, music.ErrNotFound) {
				return router.Error(http.StatusNotFound, "Song not found")
			}
			return router.Error(http.StatusInternalServerError, "Failed to load song")
		}
		u, ok := currentUser(c)
		if !ok || song.ArtistID != u.ID {
			return router.Error(http.StatusForbidden, "You can only modify your own songs")
		}

		if err := deps.Music.Delete(id); err != nil {
			if errors.Is(err, music.ErrNotFound) {
				return router.Error(http.StatusNotFound, "Song not found")
			}
			return router.Error(http.StatusInternalServerError, "Failed to delete song")
		}
		auditSafe(deps.Audit, u.Email, "music.delete", fmt.Sprintf("song:%d", id), "success", "")
		return router.JSON(http.StatusOK, map[string]any{"success": true})
	}))

	routes.Register(http.MethodGet, "/api/artists/{artist_id}/music", anyRole(func(c *router.Context) router.Result {
		artistID, ok := pathID(c, "artist_id")
		if !ok {
			return router.Error(http.StatusBadRequest, "Invalid artist id")
		}
		a, err := deps.Artists.GetByID(artistID)
		if err != nil {
			if errors.Is(err, artist.ErrNotFound) {
				return router.Error(http.StatusNotFound, "Artist not found")
			}
			return router.Error(http.StatusInternalServerError, "Failed to load artist")
		}

		page, perPage := pageParams(c)
		songs, err := deps.Music.ByArtist(artistID, page, perPage)
		if err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to list songs")
		}
		total, err := deps.Music.CountByArtist(artistID)
		if err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to count songs")
		}
		return router.JSON(http.StatusOK, map[string]any{
			"success":    true,
			"artist":     a,
			"music":      songs,
			"pagination": pagination(page, perPage, total),
		})
	}))

	routes.Register(http.MethodPost, "/api/artists/{artist_id}/music", artistOnly(func(c *router.Context) router.Result {
		artistID, ok := pathID(c, "artist_id")
		if !ok {
			return router.Error(http.StatusBadRequest, "Invalid artist id")
		}
		if _, err := deps.Artists.GetByID(artistID); err != nil {
			if errors.Is(err, artist.ErrNotFound) {
				return router.Error(http.StatusNotFound, "Artist not found")
			}
			return router.Error(http.StatusInternalServerError, "Failed to load artist")
		}

		title, _ := c.BodyString("title")
		if strings.TrimSpace(title) == "" {
			return router.Error(http.StatusBadRequest, "Song title is required")
		}
		song := music.Song{ArtistID: artistID, Title: title}
		if album, ok := c.BodyString("album_name"); ok {
			song.AlbumName = album
		}
		if genre, ok := c.BodyString("genre"); ok && genre != "" {
			if !music.ValidGenre(genre) {
				return router.Error(http.StatusBadRequest, "Invalid genre")
			}
			song.Genre = genre
		}

		id, err := deps.Music.Create(song)
		if err != nil {
			return router.Error(http.StatusInternalServerError, "Failed to create song")
		}

		// Album count maintenance is a read-then-write without a transaction;
		// concurrent creates for the same artist can lose an increment.
		if strings.TrimSpace(song.AlbumName) != "" {
			if a, err := deps.Artists.GetByID(artistID); err == nil {
				albums := a.AlbumsReleased + 1
				_ = deps.Artists.Update(artistID, artist.UpdateParams{AlbumsReleased: &albums})
			}
		}

		if u, ok := currentUser(c); ok {
			auditSafe(deps.Audit, u.Email, "music.create", fmt.Sprintf("song:%d", id), "success", "")
		}
		return router.JSON(http.StatusCreated, map[string]any{"success": true, "id": id})
	}))
}
