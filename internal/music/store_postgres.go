package music

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("song not found")
	ErrNoFields = errors.New("no fields to update")
)

const joinedColumns = `m.id, m.artist_id, m.title, m.album_name, m.genre, a.name, m.created_at, m.updated_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Create(song Song) (int64, error) {
	const q = `
INSERT INTO music (artist_id, title, album_name, genre)
VALUES ($1, $2, $3, $4)
RETURNING id`
	var id int64
	err := s.db.QueryRow(q, song.ArtistID, song.Title, nullable(song.AlbumName), nullable(song.Genre)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert song: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetByID(id int64) (Song, error) {
	const q = `
SELECT ` + joinedColumns + `
FROM music m JOIN artists a ON m.artist_id = a.id
WHERE m.id = $1`
	return scanOne(s.db.QueryRow(q, id))
}

func (s *PostgresStore) List(page, perPage int) ([]Song, error) {
	offset := (page - 1) * perPage
	const q = `
SELECT ` + joinedColumns + `
FROM music m JOIN artists a ON m.artist_id = a.id
ORDER BY m.id LIMIT $1 OFFSET $2`
	return s.queryMany(q, perPage, offset)
}

// Search matches titles and album names case-insensitively.
func (s *PostgresStore) Search(term string, page, perPage int) ([]Song, error) {
	offset := (page - 1) * perPage
	const q = `
SELECT ` + joinedColumns + `
FROM music m JOIN artists a ON m.artist_id = a.id
WHERE m.title ILIKE $1 OR m.album_name ILIKE $1
ORDER BY m.id LIMIT $2 OFFSET $3`
	return s.queryMany(q, "%"+term+"%", perPage, offset)
}

func (s *PostgresStore) ByArtist(artistID int64, page, perPage int) ([]Song, error) {
	offset := (page - 1) * perPage
	const q = `
SELECT ` + joinedColumns + `
FROM music m JOIN artists a ON m.artist_id = a.id
WHERE m.artist_id = $1
ORDER BY m.id LIMIT $2 OFFSET $3`
	return s.queryMany(q, artistID, perPage, offset)
}

func (s *PostgresStore) ByGenre(genre string, page, perPage int) ([]Song, error) {
	offset := (page - 1) * perPage
	const q = `
SELECT ` + joinedColumns + `
FROM music m JOIN artists a ON m.artist_id = a.id
WHERE m.genre = $1
ORDER BY m.id LIMIT $2 OFFSET $3`
	return s.queryMany(q, genre, perPage, offset)
}

func (s *PostgresStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM music`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count songs: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountByArtist(artistID int64) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM music WHERE artist_id = $1`, artistID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count songs by artist: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountByGenre(genre string) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM music WHERE genre = $1`, genre).Scan(&n); err != nil {
		return 0, fmt.Errorf("count songs by genre: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Update(id int64, p UpdateParams) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)

	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.AlbumName != nil {
		add("album_name", *p.AlbumName)
	}
	if p.Genre != nil {
		add("genre", *p.Genre)
	}

	if len(sets) == 0 {
		return ErrNoFields
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	q := fmt.Sprintf("UPDATE music SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := s.db.Exec(q, args...)
	if err != nil {
		return fmt.Errorf("update song: %w", err)
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
	res, err := s.db.Exec(`DELETE FROM music WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete song: %w", err)
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

func (s *PostgresStore) queryMany(q string, args ...any) ([]Song, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer rows.Close()

	out := make([]Song, 0)
	for rows.Next() {
		song, err := scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(row rowScanner) (Song, error) {
	var song Song
	var album, genre sql.NullString
	err := row.Scan(&song.ID, &song.ArtistID, &song.Title, &album, &genre, &song.ArtistName, &song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Song{}, ErrNotFound
		}
		return Song{}, fmt.Errorf("scan song: %w", err)
	}
	song.AlbumName = album.String
	song.Genre = genre.String
	return song, nil
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
