// Package sessions provides a PostgreSQL-backed repository for framework
// session records, keyed by their opaque session token.
package sessions

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

// Create inserts a new session and returns the persisted row.
func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	query := `
		INSERT INTO sessions (session_token, user_id, expires)
		VALUES ($1, $2, $3)
		RETURNING session_token, user_id, expires
	`
	created := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, session.SessionToken, session.UserID, session.Expires).
		Scan(&created.SessionToken, &created.UserID, &created.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

// GetWithUser returns the session with the given token joined to its user,
// or common.ErrorNotFound if no row matches.
func (r *PostgresRepository) GetWithUser(ctx context.Context, token string) (*models.Session, *models.User, error) {
	query := `
		SELECT s.session_token, s.user_id, s.expires,
		       u.id, u.email, u.display_name, u.avatar_url, u.email_verified_at, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.session_token = $1
	`
	session := &models.Session{}
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.SessionToken, &session.UserID, &session.Expires,
		&user.ID, &user.Email, &user.DisplayName, &user.AvatarURL, &user.EmailVerifiedAt, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, common.ErrorNotFound
		}
		return nil, nil, fmt.Errorf("db error: %w", err)
	}
	return session, user, nil
}

// Update sets a new expiry on the session with the given token and returns
// the updated row, or common.ErrorNotFound if no row matched.
func (r *PostgresRepository) Update(ctx context.Context, token string, expires time.Time) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET expires = $2
		WHERE session_token = $1
		RETURNING session_token, user_id, expires
	`
	updated := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, token, expires).
		Scan(&updated.SessionToken, &updated.UserID, &updated.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return updated, nil
}

// Delete removes a session by its token. Deleting an absent token is a no-op.
func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	query := `
		DELETE FROM sessions
		WHERE session_token = $1
	`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteAllForUser removes every session belonging to userID and reports
// how many rows were deleted.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM sessions
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
