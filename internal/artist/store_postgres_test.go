package artist

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	store, err := NewPostgresStore(db)
	if err != nil {
		t.Fatalf("NewPostgresStore() error: %v", err)
	}
	return store, mock, func() { db.Close() }
}

func artistRows(artists ...Artist) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "name", "dob", "gender", "address",
		"first_release_year", "no_of_albums_released", "created_at", "updated_at",
	})
	for _, a := range artists {
		rows.AddRow(a.ID, a.Name, a.DOB, a.Gender, a.Address, a.FirstReleaseYear, a.AlbumsReleased, a.CreatedAt, a.UpdatedAt)
	}
	return rows
}

func TestCreateReturnsID(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	mock.ExpectQuery("INSERT INTO artists").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	id, err := store.Create(Artist{Name: "Nina Simone", FirstReleaseYear: 1958})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if id != 5 {
		t.Fatalf("expected id 5, got %d", id)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	mock.ExpectQuery("SELECT (.+) FROM artists WHERE id = \\$1").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	if _, err := store.GetByID(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPaginates(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM artists ORDER BY id LIMIT \\$1 OFFSET \\$2").
		WithArgs(10, 10).
		WillReturnRows(artistRows(Artist{ID: 11, Name: "Page Two", CreatedAt: now, UpdatedAt: now}))

	out, err := store.List(2, 10)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(out) != 1 || out[0].ID != 11 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestSearchUsesPattern(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM artists WHERE name ILIKE \\$1").
		WithArgs("%nina%", 10, 0).
		WillReturnRows(artistRows(Artist{ID: 1, Name: "Nina Simone", CreatedAt: now, UpdatedAt: now}))

	out, err := store.Search("nina", 1, 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(out) != 1 || out[0].Name != "Nina Simone" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestUpdateAlbumCount(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	albums := 3
	mock.ExpectExec("UPDATE artists SET no_of_albums_released = \\$1, updated_at = NOW\\(\\) WHERE id = \\$2").
		WithArgs(3, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Update(7, UpdateParams{AlbumsReleased: &albums}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestUpdateMissingArtist(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	name := "Ghost"
	mock.ExpectExec("UPDATE artists SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Update(99, UpdateParams{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	mock.ExpectExec("DELETE FROM artists WHERE id = \\$1").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := store.Delete(7); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	mock.ExpectExec("DELETE FROM artists WHERE id = \\$1").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.Delete(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCount(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM artists").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if n != 42 {
		t.Fatalf("expected 42, got %d", n)
	}
}
