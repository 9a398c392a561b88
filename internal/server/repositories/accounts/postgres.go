// Package accounts provides a PostgreSQL-backed repository for
// provider-to-user link records.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"identikit/internal/common"
	"identikit/internal/dbx"
	"identikit/internal/server/models"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account link and returns the persisted row.
// A duplicate (provider, provider_account_id) yields common.ErrorDuplicate.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (user_id, provider, provider_account_id, type,
			refresh_token, access_token, expires_at, token_type, scope, id_token, session_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING user_id, provider, provider_account_id, type,
			refresh_token, access_token, expires_at, token_type, scope, id_token, session_state
	`
	created := &models.Account{}
	err := r.db.QueryRowContext(ctx, query,
		account.UserID, account.Provider, account.ProviderAccountID, account.Type,
		account.RefreshToken, account.AccessToken, account.ExpiresAt, account.TokenType,
		account.Scope, account.IDToken, account.SessionState).
		Scan(&created.UserID, &created.Provider, &created.ProviderAccountID, &created.Type,
			&created.RefreshToken, &created.AccessToken, &created.ExpiresAt, &created.TokenType,
			&created.Scope, &created.IDToken, &created.SessionState)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorDuplicate
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

// Delete removes the link matching provider and providerAccountID.
// Deleting an absent link is a no-op.
func (r *PostgresRepository) Delete(ctx context.Context, provider, providerAccountID string) error {
	query := `
		DELETE FROM accounts
		WHERE provider = $1 AND provider_account_id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, provider, providerAccountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetUserByAccount joins the link to its user and returns the user row,
// or common.ErrorNotFound if the link does not exist.
func (r *PostgresRepository) GetUserByAccount(ctx context.Context, provider, providerAccountID string) (*models.User, error) {
	query := `
		SELECT u.id, u.email, u.display_name, u.avatar_url, u.email_verified_at, u.created_at
		FROM accounts a
		JOIN users u ON u.id = a.user_id
		WHERE a.provider = $1 AND a.provider_account_id = $2
	`
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, provider, providerAccountID).
		Scan(&user.ID, &user.Email, &user.DisplayName, &user.AvatarURL, &user.EmailVerifiedAt, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
