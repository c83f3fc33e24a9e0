package user

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatalf("hash must not equal the plaintext")
	}

	if !CheckPassword(hash, "correct horse battery") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatalf("expected non-matching password to fail")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	h2, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("expected per-hash salt to produce distinct hashes")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleSuperAdmin, RoleArtistManager, RoleArtist} {
		if !ValidRole(role) {
			t.Fatalf("expected %q to be a valid role", role)
		}
	}
	for _, role := range []string{"", "admin", "SUPER_ADMIN", "manager"} {
		if ValidRole(role) {
			t.Fatalf("expected %q to be rejected", role)
		}
	}
}
