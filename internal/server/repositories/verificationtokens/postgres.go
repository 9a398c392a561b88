// Package verificationtokens provides a PostgreSQL-backed repository for
// one-time email/magic-link verification tokens.
package verificationtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"identikit/internal/common"
	"identikit/internal/dbx"
	"identikit/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new verification token and returns the persisted row.
func (r *PostgresRepository) Create(ctx context.Context, token *models.VerificationToken) (*models.VerificationToken, error) {
	query := `
		INSERT INTO verification_tokens (identifier, token, expires)
		VALUES ($1, $2, $3)
		RETURNING identifier, token, expires
	`
	created := &models.VerificationToken{}
	err := r.db.QueryRowContext(ctx, query, token.Identifier, token.Token, token.Expires).
		Scan(&created.Identifier, &created.Token, &created.Expires)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

// Consume deletes the row matching (identifier, token) and returns it in a
// single round-trip, so two concurrent consumers cannot both observe the
// same token. A missing pair yields common.ErrorNotFound.
func (r *PostgresRepository) Consume(ctx context.Context, identifier, token string) (*models.VerificationToken, error) {
	query := `
		DELETE FROM verification_tokens
		WHERE identifier = $1 AND token = $2
		RETURNING identifier, token, expires
	`
	consumed := &models.VerificationToken{}
	err := r.db.QueryRowContext(ctx, query, identifier, token).
		Scan(&consumed.Identifier, &consumed.Token, &consumed.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return consumed, nil
}

// DeleteExpired removes tokens whose expiry is at or before now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM verification_tokens
		WHERE expires <= $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
