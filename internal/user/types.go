package user

import "time"

// Roles form a closed set; anything else is rejected at the API boundary.
const (
	RoleSuperAdmin    = "super_admin"
	RoleArtistManager = "artist_manager"
	RoleArtist        = "artist"
)

func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleArtistManager, RoleArtist:
		return true
	}
	return false
}

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	DOB          string    `json:"dob,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	Address      string    `json:"address,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UpdateParams carries the optional fields of a user update; nil means
// "leave unchanged". Password, when set, is hashed before storage.
type UpdateParams struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	DOB       *string
	Gender    *string
	Address   *string
	Role      *string
	Password  *string
}
