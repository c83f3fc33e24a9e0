package user

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted bcrypt hash. The default cost keeps a single
// verification in the tens of milliseconds, which is the point.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against a stored hash using
// bcrypt's own comparison; the hash is never reconstructed and compared by
// hand.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
