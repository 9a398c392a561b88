package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"identikit/internal/logging"
	"identikit/internal/server/repositories/repomanager"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunOnce_PurgesBothTablesInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)^\s*DELETE\s+FROM\s+sessions\s+WHERE\s+expires\s*<=\s*\$1`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`(?s)^\s*DELETE\s+FROM\s+verification_tokens\s+WHERE\s+expires\s*<=\s*\$1`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	service := New(db, repomanager.NewPostgresRepositoryManager(), discardLogger())

	res, err := service.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.SessionsDeleted)
	assert.Equal(t, int64(3), res.TokensDeleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunOnce_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)^\s*DELETE\s+FROM\s+sessions\b`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)^\s*DELETE\s+FROM\s+verification_tokens\b`).
		WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	service := New(db, repomanager.NewPostgresRepositoryManager(), discardLogger())

	_, err = service.RunOnce(context.Background())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := New(db, repomanager.NewPostgresRepositoryManager(), discardLogger(),
		WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- service.Start(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestOptions(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := New(db, repomanager.NewPostgresRepositoryManager(), discardLogger(),
		WithInterval(time.Minute))
	assert.Equal(t, time.Minute, service.interval)

	// non-positive intervals keep the default
	service = New(db, repomanager.NewPostgresRepositoryManager(), discardLogger(),
		WithInterval(0))
	assert.Equal(t, 15*time.Minute, service.interval)
}
