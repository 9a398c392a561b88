package adapter

import (
	"context"
	"errors"
	"fmt"

	"identikit/internal/common"
	"identikit/internal/server/models"
)

// LinkAccount inserts a provider-to-user link and returns the persisted row.
// An insert yielding no row, such as a duplicate (provider,
// providerAccountId) pair, yields "Failed to create account".
func (a *Adapter) LinkAccount(ctx context.Context, account models.Account) (*models.Account, error) {
	created, err := a.repos.Accounts(a.db).Create(ctx, &account)
	if err != nil {
		a.countError("link_account")
		if errors.Is(err, common.ErrorDuplicate) || errors.Is(err, common.ErrorNotFound) {
			return nil, &PersistenceError{msg: msgCreateAccountFailed, err: err}
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}
	return created, nil
}

// UnlinkAccount deletes the matching link. Unlinking an absent link is a
// no-op.
func (a *Adapter) UnlinkAccount(ctx context.Context, provider, providerAccountID string) error {
	if err := a.repos.Accounts(a.db).Delete(ctx, provider, providerAccountID); err != nil {
		a.countError("unlink_account")
		return fmt.Errorf("error deleting account: %w", err)
	}
	return nil
}

// GetUserByAccount resolves the user behind a provider link, or nil if the
// link does not exist.
func (a *Adapter) GetUserByAccount(ctx context.Context, provider, providerAccountID string) (*ExternalUser, error) {
	user, err := a.repos.Accounts(a.db).GetUserByAccount(ctx, provider, providerAccountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		a.countError("get_user_by_account")
		return nil, fmt.Errorf("error searching user by account: %w", err)
	}
	return externalUser(user), nil
}
