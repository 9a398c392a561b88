package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"identikit/internal/common"
	"identikit/internal/server/models"
)

// SessionAndUser bundles a session with its joined user, in the shape the
// framework expects.
type SessionAndUser struct {
	Session *models.Session `json:"session"`
	User    *ExternalUser   `json:"user"`
}

// CreateSession inserts a new session and returns the persisted row.
func (a *Adapter) CreateSession(ctx context.Context, session models.Session) (*models.Session, error) {
	created, err := a.repos.Sessions(a.db).Create(ctx, &session)
	if err != nil {
		a.countError("create_session")
		if errors.Is(err, common.ErrorNotFound) {
			return nil, &PersistenceError{msg: msgCreateSessionFailed, err: err}
		}
		return nil, fmt.Errorf("error creating session: %w", err)
	}
	if a.metrics != nil {
		a.metrics.SessionsCreated.Inc()
	}
	return created, nil
}

// GetSessionWithUser returns the session with the given token joined to its
// user, or nil if no session matches the token.
func (a *Adapter) GetSessionWithUser(ctx context.Context, token string) (*SessionAndUser, error) {
	session, user, err := a.repos.Sessions(a.db).GetWithUser(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		a.countError("get_session_with_user")
		return nil, fmt.Errorf("error searching session: %w", err)
	}
	return &SessionAndUser{Session: session, User: externalUser(user)}, nil
}

// UpdateSession extends the expiry of the session with the given token and
// returns the updated row. An update matching no row yields a
// PersistenceError.
func (a *Adapter) UpdateSession(ctx context.Context, token string, expires time.Time) (*models.Session, error) {
	updated, err := a.repos.Sessions(a.db).Update(ctx, token, expires)
	if err != nil {
		a.countError("update_session")
		if errors.Is(err, common.ErrorNotFound) {
			return nil, &PersistenceError{msg: msgUpdateSessionFailed, err: err}
		}
		return nil, fmt.Errorf("error updating session: %w", err)
	}
	return updated, nil
}

// DeleteSession removes the session by token. Deleting an already-absent
// token is not an error.
func (a *Adapter) DeleteSession(ctx context.Context, token string) error {
	if err := a.repos.Sessions(a.db).Delete(ctx, token); err != nil {
		a.countError("delete_session")
		return fmt.Errorf("error deleting session: %w", err)
	}
	if a.metrics != nil {
		a.metrics.SessionsDeleted.Inc()
	}
	return nil
}
