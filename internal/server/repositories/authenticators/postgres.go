// Package authenticators provides a PostgreSQL-backed repository for
// WebAuthn-style passkey credentials.
package authenticators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"identikit/internal/common"
	"identikit/internal/dbx"
	"identikit/internal/server/models"
)

const columns = `credential_id, user_id, provider_account_id, credential_public_key,
		counter, credential_device_type, credential_backed_up, transports`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new credential and returns the persisted row.
func (r *PostgresRepository) Create(ctx context.Context, authenticator *models.Authenticator) (*models.Authenticator, error) {
	query := `
		INSERT INTO authenticators (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + columns
	err := r.scanAuthenticator(r.db.QueryRowContext(ctx, query,
		authenticator.CredentialID, authenticator.UserID, authenticator.ProviderAccountID,
		authenticator.CredentialPublicKey, authenticator.Counter, authenticator.CredentialDeviceType,
		authenticator.CredentialBackedUp, authenticator.Transports), authenticator)
	if err != nil {
		return nil, err
	}
	return authenticator, nil
}

// GetByCredentialID returns the credential with the given id, or
// common.ErrorNotFound.
func (r *PostgresRepository) GetByCredentialID(ctx context.Context, credentialID string) (*models.Authenticator, error) {
	query := `
		SELECT ` + columns + `
		FROM authenticators
		WHERE credential_id = $1
	`
	authenticator := &models.Authenticator{}
	if err := r.scanAuthenticator(r.db.QueryRowContext(ctx, query, credentialID), authenticator); err != nil {
		return nil, err
	}
	return authenticator, nil
}

// ListByUser returns every credential registered for userID. An empty result
// is returned as an empty slice, not an error.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Authenticator, error) {
	query := `
		SELECT ` + columns + `
		FROM authenticators
		WHERE user_id = $1
		ORDER BY credential_id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var list []*models.Authenticator
	for rows.Next() {
		a := &models.Authenticator{}
		if err := rows.Scan(&a.CredentialID, &a.UserID, &a.ProviderAccountID, &a.CredentialPublicKey,
			&a.Counter, &a.CredentialDeviceType, &a.CredentialBackedUp, &a.Transports); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

// UpdateCounter sets the signature counter on the credential and returns the
// updated row, or common.ErrorNotFound if no row matched. The new value is
// persisted as given; monotonicity is the caller's invariant.
func (r *PostgresRepository) UpdateCounter(ctx context.Context, credentialID string, counter int64) (*models.Authenticator, error) {
	query := `
		UPDATE authenticators
		SET counter = $2
		WHERE credential_id = $1
		RETURNING ` + columns
	authenticator := &models.Authenticator{}
	if err := r.scanAuthenticator(r.db.QueryRowContext(ctx, query, credentialID, counter), authenticator); err != nil {
		return nil, err
	}
	return authenticator, nil
}

func (r *PostgresRepository) scanAuthenticator(row *sql.Row, a *models.Authenticator) error {
	err := row.Scan(&a.CredentialID, &a.UserID, &a.ProviderAccountID, &a.CredentialPublicKey,
		&a.Counter, &a.CredentialDeviceType, &a.CredentialBackedUp, &a.Transports)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
