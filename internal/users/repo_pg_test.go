package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "hash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Create(context.Background(), User{Username: "alice", PasswordHash: "hash"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(context.Background(), User{Username: "alice", PasswordHash: "hash"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("SELECT username, password_hash, created_at").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash", "created_at"}).AddRow("alice", "hash", created))
	mock.ExpectQuery("SELECT username, password_hash, created_at").
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password_hash", "created_at"}))

	user, err := repo.Get(context.Background(), "alice")
	if err != nil || user.PasswordHash != "hash" || !user.CreatedAt.Equal(created) {
		t.Fatalf("Get = %+v, %v", user, err)
	}
	if _, err := repo.Get(context.Background(), "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
