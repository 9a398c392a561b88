package verificationtokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"identikit/internal/common"
	"identikit/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+verification_tokens\b.*RETURNING\b`

	expires := time.Now().Add(10 * time.Minute)
	rows := sqlmock.NewRows([]string{"identifier", "token", "expires"}).
		AddRow("a@example.com", "tok-xyz", expires)

	mock.ExpectQuery(q).WithArgs("a@example.com", "tok-xyz", expires).WillReturnRows(rows)

	got, err := repo.Create(context.Background(), &models.VerificationToken{
		Identifier: "a@example.com", Token: "tok-xyz", Expires: expires,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Identifier != "a@example.com" || got.Token != "tok-xyz" {
		t.Fatalf("unexpected row: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConsume_DeletesAndReturnsRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*DELETE\s+FROM\s+verification_tokens\s+WHERE\s+identifier\s*=\s*\$1\s+AND\s+token\s*=\s*\$2\s+RETURNING\b`

	expires := time.Now().Add(10 * time.Minute)
	rows := sqlmock.NewRows([]string{"identifier", "token", "expires"}).
		AddRow("a@example.com", "tok-xyz", expires)

	mock.ExpectQuery(q).WithArgs("a@example.com", "tok-xyz").WillReturnRows(rows)

	got, err := repo.Consume(context.Background(), "a@example.com", "tok-xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Token != "tok-xyz" {
		t.Fatalf("unexpected row: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConsume_MissingPair(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*DELETE\s+FROM\s+verification_tokens\b`).
		WithArgs("a@example.com", "ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Consume(context.Background(), "a@example.com", "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestDeleteExpired_ReportsRowCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`(?s)^\s*DELETE\s+FROM\s+verification_tokens\s+WHERE\s+expires\s*<=\s*\$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 rows, got %d", n)
	}
}
