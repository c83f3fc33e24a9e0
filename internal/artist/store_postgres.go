package artist

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("artist not found")
	ErrNoFields = errors.New("no fields to update")
)

const artistColumns = `id, name, dob, gender, address, first_release_year, no_of_albums_released, created_at, updated_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Create(a Artist) (int64, error) {
	const q = `
INSERT INTO artists (name, dob, gender, address, first_release_year, no_of_albums_released)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	var id int64
	err := s.db.QueryRow(q,
		a.Name, nullable(a.DOB), nullable(a.Gender), nullable(a.Address),
		nullableInt(a.FirstReleaseYear), a.AlbumsReleased,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert artist: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetByID(id int64) (Artist, error) {
	const q = `SELECT ` + artistColumns + ` FROM artists WHERE id = $1`
	return scanOne(s.db.QueryRow(q, id))
}

func (s *PostgresStore) List(page, perPage int) ([]Artist, error) {
	offset := (page - 1) * perPage
	const q = `SELECT ` + artistColumns + ` FROM artists ORDER BY id LIMIT $1 OFFSET $2`
	return s.queryMany(q, perPage, offset)
}

// Search matches artist names case-insensitively anywhere in the name.
func (s *PostgresStore) Search(term string, page, perPage int) ([]Artist, error) {
	offset := (page - 1) * perPage
	const q = `SELECT ` + artistColumns + ` FROM artists WHERE name ILIKE $1 ORDER BY id LIMIT $2 OFFSET $3`
	return s.queryMany(q, "%"+term+"%", perPage, offset)
}

// All returns every artist without pagination; used by the CSV export.
func (s *PostgresStore) All() ([]Artist, error) {
	const q = `SELECT ` + artistColumns + ` FROM artists ORDER BY id`
	return s.queryMany(q)
}

func (s *PostgresStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM artists`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count artists: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Update(id int64, p UpdateParams) error {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)

	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Name != nil {
		add("name", *p.Name)
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
	if p.FirstReleaseYear != nil {
		add("first_release_year", *p.FirstReleaseYear)
	}
	if p.AlbumsReleased != nil {
		add("no_of_albums_released", *p.AlbumsReleased)
	}

	if len(sets) == 0 {
		return ErrNoFields
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	q := fmt.Sprintf("UPDATE artists SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := s.db.Exec(q, args...)
	if err != nil {
		return fmt.Errorf("update artist: %w", err)
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
	res, err := s.db.Exec(`DELETE FROM artists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete artist: %w", err)
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

func (s *PostgresStore) queryMany(q string, args ...any) ([]Artist, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query artists: %w", err)
	}
	defer rows.Close()

	out := make([]Artist, 0)
	for rows.Next() {
		a, err := scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(row rowScanner) (Artist, error) {
	var a Artist
	var dob, gender, address sql.NullString
	var year sql.NullInt64
	err := row.Scan(&a.ID, &a.Name, &dob, &gender, &address, &year, &a.AlbumsReleased, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Artist{}, ErrNotFound
		}
		return Artist{}, fmt.Errorf("scan artist: %w", err)
	}
	a.DOB = dob.String
	a.Gender = gender.String
	a.Address = address.String
	a.FirstReleaseYear = int(year.Int64)
	return a, nil
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
