// Package migrations applies the embedded schema files in lexical order,
// tracking what ran in a schema_migrations table.
package migrations

import (
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"fmt"
	"sort"
	"time"
)

//go:embed sql/*.sql
var files embed.FS

type FileInfo struct {
	Name     string `json:"name"`
	Checksum string `json:"checksum"`
	content  string
}

type Status struct {
	Name      string `json:"name"`
	Checksum  string `json:"checksum"`
	Applied   bool   `json:"applied"`
	AppliedAt string `json:"applied_at,omitempty"`
}

type appliedRecord struct {
	checksum  string
	appliedAt time.Time
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	return &Service{db: db}, nil
}

// List returns the embedded migration files in the order they apply.
func List() ([]FileInfo, error) {
	entries, err := files.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		b, err := files.ReadFile("sql/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		sum := sha256.Sum256(b)
		out = append(out, FileInfo{
			Name:     e.Name(),
			Checksum: hex.EncodeToString(sum[:]),
			content:  string(b),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Apply runs every pending migration, each in its own transaction, and
// records it. An already-applied migration whose file content changed is an
// error rather than a silent re-run.
func (s *Service) Apply() error {
	if err := s.ensureSchema(); err != nil {
		return err
	}

	list, err := List()
	if err != nil {
		return err
	}
	applied, err := s.loadApplied()
	if err != nil {
		return err
	}

	for _, f := range list {
		if rec, ok := applied[f.Name]; ok {
			if rec.checksum != f.Checksum {
				return fmt.Errorf("migration %s changed after being applied", f.Name)
			}
			continue
		}
		if err := s.applyOne(f); err != nil {
			return err
		}
	}
	return nil
}

// Status reports every embedded migration with its applied state.
func (s *Service) Status() ([]Status, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}

	list, err := List()
	if err != nil {
		return nil, err
	}
	applied, err := s.loadApplied()
	if err != nil {
		return nil, err
	}

	out := make([]Status, 0, len(list))
	for _, f := range list {
		st := Status{Name: f.Name, Checksum: f.Checksum}
		if rec, ok := applied[f.Name]; ok {
			st.Applied = true
			st.AppliedAt = rec.appliedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *Service) applyOne(f FileInfo) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", f.Name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(f.content); err != nil {
		return fmt.Errorf("apply migration %s: %w", f.Name, err)
	}
	const q = `INSERT INTO schema_migrations (name, checksum, applied_at) VALUES ($1, $2, NOW())`
	if _, err := tx.Exec(q, f.Name, f.Checksum); err != nil {
		return fmt.Errorf("record migration %s: %w", f.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", f.Name, err)
	}
	return nil
}

func (s *Service) ensureSchema() error {
	const q = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	name TEXT PRIMARY KEY,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL
)`
	if _, err := s.db.Exec(q); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

func (s *Service) loadApplied() (map[string]appliedRecord, error) {
	rows, err := s.db.Query(`SELECT name, checksum, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]appliedRecord)
	for rows.Next() {
		var name string
		var rec appliedRecord
		if err := rows.Scan(&name, &rec.checksum, &rec.appliedAt); err != nil {
			return nil, fmt.Errorf("scan schema_migrations: %w", err)
		}
		out[name] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schema_migrations: %w", err)
	}
	return out, nil
}
