package pg

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"cv-builder/internal/shared/storage/kv"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &Store{DB: db}, mock
}

func TestReadReturnsValue(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery("SELECT value FROM kv_entries").
		WithArgs("u1/saved_cvs").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[{"id":"a"}]`)))

	got, err := store.Read(context.Background(), "u1/saved_cvs")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != `[{"id":"a"}]` {
		t.Fatalf("Read = %q", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestReadMissingKeyIsNotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery("SELECT value FROM kv_entries").
		WithArgs("u1/trash").
		WillReturnError(sql.ErrNoRows)

	if _, err := store.Read(context.Background(), "u1/trash"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWriteUpserts(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec("INSERT INTO kv_entries").
		WithArgs("u1/trash", []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.Write(context.Background(), "u1/trash", []byte(`[]`)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestDeleteWrapsDriverError(t *testing.T) {
	store, mock := newMock(t)

	boom := errors.New("connection reset")
	mock.ExpectExec("DELETE FROM kv_entries").
		WithArgs("u1/working").
		WillReturnError(boom)

	err := store.Delete(context.Background(), "u1/working")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}
