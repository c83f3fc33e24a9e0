package migrations

import (
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newService(t *testing.T) (*Service, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	return svc, mock, func() { db.Close() }
}

func TestListIsOrderedAndComplete(t *testing.T) {
	list, err := List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name >= list[i].Name {
			t.Fatalf("migrations out of order: %q before %q", list[i-1].Name, list[i].Name)
		}
	}
	if !strings.Contains(list[0].content, "CREATE TABLE IF NOT EXISTS users") {
		t.Fatalf("first migration should create users, got %q", list[0].Name)
	}
	if list[0].Checksum == "" || list[0].Checksum == list[1].Checksum {
		t.Fatalf("expected distinct non-empty checksums")
	}
}

func TestApplyRunsPendingInOrder(t *testing.T) {
	svc, mock, done := newService(t)
	defer done()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name, checksum, applied_at FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name", "checksum", "applied_at"}))

	for _, table := range []string{"users", "artists", "music"} {
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	if err := svc.Apply(); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestApplySkipsAlreadyApplied(t *testing.T) {
	svc, mock, done := newService(t)
	defer done()

	list, err := List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	rows := sqlmock.NewRows([]string{"name", "checksum", "applied_at"})
	for _, f := range list {
		rows.AddRow(f.Name, f.Checksum, time.Now())
	}
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name, checksum, applied_at FROM schema_migrations").
		WillReturnRows(rows)

	if err := svc.Apply(); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestApplyRejectsChangedMigration(t *testing.T) {
	svc, mock, done := newService(t)
	defer done()

	list, err := List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name, checksum, applied_at FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name", "checksum", "applied_at"}).
			AddRow(list[0].Name, "stale-checksum", time.Now()))

	err = svc.Apply()
	if err == nil || !strings.Contains(err.Error(), "changed after being applied") {
		t.Fatalf("expected checksum mismatch error, got %v", err)
	}
}

func TestStatusReportsAppliedState(t *testing.T) {
	svc, mock, done := newService(t)
	defer done()

	list, err := List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	appliedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name, checksum, applied_at FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name", "checksum", "applied_at"}).
			AddRow(list[0].Name, list[0].Checksum, appliedAt))

	statuses, err := svc.Status()
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if len(statuses) != len(list) {
		t.Fatalf("expected %d statuses, got %d", len(list), len(statuses))
	}
	if !statuses[0].Applied || statuses[0].AppliedAt != "2024-05-01T12:00:00Z" {
		t.Fatalf("unexpected first status: %+v", statuses[0])
	}
	if statuses[1].Applied {
		t.Fatalf("second migration should be pending: %+v", statuses[1])
	}
}
