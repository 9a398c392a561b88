package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"identikit/internal/common"
	"identikit/internal/server/models"
)

// ResolveOrCreateUser reconciles an incoming external identity against the
// stored users.
//
// A non-blank email is looked up first; failing that, an identity carrying a
// provider account id is looked up by that id. A user found either way is
// returned unchanged. Otherwise a new user is created whose id is the
// provider account id when present, or a freshly generated one. Losing the
// create race to a concurrent first-sight request is resolved by re-reading
// the winner's row.
func (a *Adapter) ResolveOrCreateUser(ctx context.Context, ident ExternalIdentity) (*ExternalUser, error) {
	repo := a.repos.Users(a.db)

	email := ""
	if ident.Email != nil {
		email = strings.TrimSpace(*ident.Email)
	}

	if email != "" {
		existing, err := repo.GetByEmail(ctx, email)
		if err == nil {
			return externalUser(existing), nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			a.countError("resolve_or_create_user")
			return nil, fmt.Errorf("error searching user by email: %w", err)
		}
	} else if ident.ProviderAccountID != "" {
		existing, err := repo.GetByID(ctx, ident.ProviderAccountID)
		if err == nil {
			return externalUser(existing), nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			a.countError("resolve_or_create_user")
			return nil, fmt.Errorf("error searching user by id: %w", err)
		}
	}

	id := ident.ProviderAccountID
	if id == "" {
		id = uuid.NewString()
	}

	created, err := repo.Create(ctx, userFromIdentity(id, ident))
	if err != nil {
		if errors.Is(err, common.ErrorDuplicate) {
			// someone else just created it; return the existing row
			return a.rereadAfterLostRace(ctx, id, email)
		}
		a.countError("resolve_or_create_user")
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if a.metrics != nil {
		a.metrics.UsersCreated.Inc()
	}
	return externalUser(created), nil
}

func (a *Adapter) rereadAfterLostRace(ctx context.Context, id, email string) (*ExternalUser, error) {
	repo := a.repos.Users(a.db)

	existing, err := repo.GetByID(ctx, id)
	if err == nil {
		return externalUser(existing), nil
	}
	if email != "" && errors.Is(err, common.ErrorNotFound) {
		existing, err = repo.GetByEmail(ctx, email)
		if err == nil {
			return externalUser(existing), nil
		}
	}
	a.countError("resolve_or_create_user")
	return nil, fmt.Errorf("error re-reading user after create conflict: %w", err)
}

// GetUserByEmail returns the user with the given email, or nil if absent.
func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*ExternalUser, error) {
	user, err := a.repos.Users(a.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		a.countError("get_user_by_email")
		return nil, fmt.Errorf("error searching user by email: %w", err)
	}
	return externalUser(user), nil
}

// GetUserByID returns the user with the given id, or nil if absent.
func (a *Adapter) GetUserByID(ctx context.Context, id string) (*ExternalUser, error) {
	user, err := a.repos.Users(a.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		a.countError("get_user_by_id")
		return nil, fmt.Errorf("error searching user by id: %w", err)
	}
	return externalUser(user), nil
}

// UserPatch describes a partial user update. ID is required; nil fields are
// left unchanged.
type UserPatch struct {
	ID            string     `json:"id"`
	Email         *string    `json:"email"`
	Name          *string    `json:"name"`
	Image         *string    `json:"image"`
	EmailVerified *time.Time `json:"emailVerified"`
}

// UpdateUser applies patch to the stored user. The framework only calls this
// when it believes the user exists, so absence is exceptional: a missing user
// yields "User not found", and an update matching no row (the user vanished
// between the fetch and the write) yields "Failed to update user".
func (a *Adapter) UpdateUser(ctx context.Context, patch UserPatch) (*ExternalUser, error) {
	repo := a.repos.Users(a.db)

	existing, err := repo.GetByID(ctx, patch.ID)
	if err != nil {
		a.countError("update_user")
		if errors.Is(err, common.ErrorNotFound) {
			return nil, &NotFoundError{msg: msgUserNotFound, err: err}
		}
		return nil, fmt.Errorf("error searching user by id: %w", err)
	}

	merged := &models.User{
		ID:              existing.ID,
		Email:           existing.Email,
		DisplayName:     existing.DisplayName,
		AvatarURL:       existing.AvatarURL,
		EmailVerifiedAt: existing.EmailVerifiedAt,
	}
	if patch.Email != nil {
		merged.Email = patch.Email
	}
	if patch.Name != nil {
		merged.DisplayName = patch.Name
	}
	if patch.Image != nil {
		merged.AvatarURL = patch.Image
	}
	if patch.EmailVerified != nil {
		merged.EmailVerifiedAt = patch.EmailVerified
	}

	updated, err := repo.Update(ctx, merged)
	if err != nil {
		a.countError("update_user")
		return nil, &PersistenceError{msg: msgUpdateUserFailed, err: err}
	}
	return externalUser(updated), nil
}

// DeleteUser removes the user by id and returns the deleted record.
// A missing user yields "Delete User not found".
func (a *Adapter) DeleteUser(ctx context.Context, id string) (*ExternalUser, error) {
	deleted, err := a.repos.Users(a.db).Delete(ctx, id)
	if err != nil {
		a.countError("delete_user")
		if errors.Is(err, common.ErrorNotFound) {
			return nil, &NotFoundError{msg: msgDeleteUserNotFound, err: err}
		}
		return nil, fmt.Errorf("error deleting user: %w", err)
	}
	return externalUser(deleted), nil
}
