package artist

import "time"

type Artist struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	DOB              string    `json:"dob,omitempty"`
	Gender           string    `json:"gender,omitempty"`
	Address          string    `json:"address,omitempty"`
	FirstReleaseYear int       `json:"first_release_year,omitempty"`
	AlbumsReleased   int       `json:"no_of_albums_released"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UpdateParams carries the optional fields of an artist update; nil means
// "leave unchanged".
type UpdateParams struct {
	Name             *string
	DOB              *string
	Gender           *string
	Address          *string
	FirstReleaseYear *int
	AlbumsReleased   *int
}
