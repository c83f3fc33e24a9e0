package user

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoFields           = errors.New("no fields to update")
)

const userColumns = `id, first_name, last_name, email, password_hash, phone, dob, gender, address, role, created_at, updated_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) GetByID(id int64) (User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanOne(s.db.QueryRow(q, id))
}

func (s *PostgresStore) GetByEmail(email string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, ErrNotFound
	}
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanOne(s.db.QueryRow(q, email))
}

func (s *PostgresStore) List(page, perPage int) ([]User, error) {
	offset := (page - 1) * perPage
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := s.db.Query(q, perPage, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		u, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountByRole(role string) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return n, nil
}

// Create hashes the plaintext password and inserts the user, returning the
// new id. Email uniqueness is also enforced by the schema; callers that want
// a friendly message check GetByEmail first.
func (s *PostgresStore) Create(u User, password string) (int64, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	const q = `
INSERT INTO users (first_name, last_name, email, password_hash, phone, dob, gender, address, role)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	var id int64
	err = s.db.QueryRow(q,
		u.FirstName, u.LastName, strings.TrimSpace(u.Email), hash,
		nullable(u.Phone), nullable(u.DOB), nullable(u.Gender), nullable(u.Address), u.Role,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Update(id int64, p UpdateParams) error {
	sets := make([]string, 0, 9)
	args := make([]any, 0, 10)

	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.FirstName != nil {
		add("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		add("last_name", *p.LastName)
	}
	if p.Email != nil {
		add("email", strings.TrimSpace(*p.Email))
	}
	if p.Phone != nil {
		add("phone", *p.Phone)
	}
	if p.DOB != nil {
		add("dob", *p.DOB)
	}
	if p.Gender != nil {
		add("gender", *p.Gender)
	}
	if p.Address != nil {
		add("address", *p.Address)
	}
	if p.Role != nil {
		add("role", *p.Role)
	}
	if p.Password != nil {
		hash, err := HashPassword(*p.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		add("password_hash", hash)
	}

	if len(sets) == 0 {
		return ErrNoFields
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	q := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := s.db.Exec(q, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read update affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read delete affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Authenticate returns the user only when the email exists and the password
// verifies. Unknown email and wrong password are indistinguishable to the
// caller; both are ErrInvalidCredentials.
func (s *PostgresStore) Authenticate(email, password string) (User, error) {
	u, err := s.GetByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanOne(row rowScanner) (User, error) {
	var u User
	var phone, dob, gender, address sql.NullString
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&phone, &dob, &gender, &address, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Phone = phone.String
	u.DOB = dob.String
	u.Gender = gender.String
	u.Address = address.String
	return u, nil
}

// nullable maps empty strings to SQL NULL, mirroring the CSV/form convention
// that an absent field is stored as NULL rather than "".
func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
