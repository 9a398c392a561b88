// Package users provides a PostgreSQL-backed repository for the canonical
// user records of the identity store.
package users

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

// Create inserts a new user and returns the persisted row.
// A unique-constraint violation (id or email) yields common.ErrorDuplicate,
// so callers racing on first sight can re-read the winner's row.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, display_name, avatar_url, email_verified_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, display_name, avatar_url, email_verified_at, created_at
	`
	created := &models.User{}
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.DisplayName, user.AvatarURL, user.EmailVerifiedAt).
		Scan(&created.ID, &created.Email, &created.DisplayName, &created.AvatarURL, &created.EmailVerifiedAt, &created.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorDuplicate
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

// GetByID returns the user with the given id, or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, display_name, avatar_url, email_verified_at, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail returns the user with the given email, or common.ErrorNotFound.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, display_name, avatar_url, email_verified_at, created_at
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// Update overwrites the mutable fields of the user identified by user.ID and
// returns the updated row, or common.ErrorNotFound if no row matched.
func (r *PostgresRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		UPDATE users
		SET email = $2, display_name = $3, avatar_url = $4, email_verified_at = $5
		WHERE id = $1
		RETURNING id, email, display_name, avatar_url, email_verified_at, created_at
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.DisplayName, user.AvatarURL, user.EmailVerifiedAt))
}

// Delete removes the user by id and returns the deleted row, or
// common.ErrorNotFound if no row matched. Dependent rows are removed by the
// schema's ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.User, error) {
	query := `
		DELETE FROM users
		WHERE id = $1
		RETURNING id, email, display_name, avatar_url, email_verified_at, created_at
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.AvatarURL, &user.EmailVerifiedAt, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
