package music

import "time"

// Genres form a closed set; anything else is rejected at the API boundary.
var Genres = []string{"rnb", "country", "classic", "jazz"}

func ValidGenre(genre string) bool {
	for _, g := range Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// Song is a music row joined with its artist's name where the query provides
// one.
type Song struct {
	ID         int64     `json:"id"`
	ArtistID   int64     `json:"artist_id"`
	Title      string    `json:"title"`
	AlbumName  string    `json:"album_name,omitempty"`
	Genre      string    `json:"genre,omitempty"`
	ArtistName string    `json:"artist_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UpdateParams carries the optional fields of a song update; nil means
// "leave unchanged".
type UpdateParams struct {
	Title     *string
	AlbumName *string
	Genre     *string
}
