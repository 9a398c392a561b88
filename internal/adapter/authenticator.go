package adapter

import (
	"context"
	"errors"
	"fmt"

	"identikit/internal/common"
	"identikit/internal/server/models"
)

// Authenticator is a passkey credential in the shape the framework expects:
// the raw comma-joined transports column becomes an ordered collection.
// A nil Transports slice means the transports are unknown; an empty slice
// means the credential explicitly reported none.
type Authenticator struct {
	CredentialID         string   `json:"credentialID"`
	UserID               string   `json:"userId"`
	ProviderAccountID    string   `json:"providerAccountId"`
	CredentialPublicKey  string   `json:"credentialPublicKey"`
	Counter              int64    `json:"counter"`
	CredentialDeviceType string   `json:"credentialDeviceType"`
	CredentialBackedUp   bool     `json:"credentialBackedUp"`
	Transports           []string `json:"transports,omitempty"`
}

func externalAuthenticator(m *models.Authenticator) *Authenticator {
	return &Authenticator{
		CredentialID:         m.CredentialID,
		UserID:               m.UserID,
		ProviderAccountID:    m.ProviderAccountID,
		CredentialPublicKey:  m.CredentialPublicKey,
		Counter:              m.Counter,
		CredentialDeviceType: m.CredentialDeviceType,
		CredentialBackedUp:   m.CredentialBackedUp,
		Transports:           splitTransports(m.Transports),
	}
}

func storedAuthenticator(a Authenticator) *models.Authenticator {
	return &models.Authenticator{
		CredentialID:         a.CredentialID,
		UserID:               a.UserID,
		ProviderAccountID:    a.ProviderAccountID,
		CredentialPublicKey:  a.CredentialPublicKey,
		Counter:              a.Counter,
		CredentialDeviceType: a.CredentialDeviceType,
		CredentialBackedUp:   a.CredentialBackedUp,
		Transports:           joinTransports(a.Transports),
	}
}

// CreateAuthenticator inserts a passkey credential and returns it, shaped
// per the transports rule.
func (a *Adapter) CreateAuthenticator(ctx context.Context, authenticator Authenticator) (*Authenticator, error) {
	created, err := a.repos.Authenticators(a.db).Create(ctx, storedAuthenticator(authenticator))
	if err != nil {
		a.countError("create_authenticator")
		return nil, fmt.Errorf("error creating authenticator: %w", err)
	}
	return externalAuthenticator(created), nil
}

// GetAuthenticator returns the credential with the given id. The framework
// only calls this when it expects the credential to exist, so absence yields
// "Failed to get authenticator".
func (a *Adapter) GetAuthenticator(ctx context.Context, credentialID string) (*Authenticator, error) {
	found, err := a.repos.Authenticators(a.db).GetByCredentialID(ctx, credentialID)
	if err != nil {
		a.countError("get_authenticator")
		if errors.Is(err, common.ErrorNotFound) {
			return nil, &NotFoundError{msg: msgGetAuthenticatorFailed, err: err}
		}
		return nil, fmt.Errorf("error searching authenticator: %w", err)
	}
	return externalAuthenticator(found), nil
}

// ListAuthenticatorsByUser returns every credential registered for userID.
// An empty result yields "Failed to get authenticator list", matching the
// caller-expects-existence policy of GetAuthenticator.
func (a *Adapter) ListAuthenticatorsByUser(ctx context.Context, userID string) ([]*Authenticator, error) {
	stored, err := a.repos.Authenticators(a.db).ListByUser(ctx, userID)
	if err != nil {
		a.countError("list_authenticators")
		return nil, fmt.Errorf("error listing authenticators: %w", err)
	}
	if len(stored) == 0 {
		a.countError("list_authenticators")
		return nil, &NotFoundError{msg: msgListAuthenticatorsFailed, err: common.ErrorNotFound}
	}
	list := make([]*Authenticator, 0, len(stored))
	for _, m := range stored {
		list = append(list, externalAuthenticator(m))
	}
	return list, nil
}

// UpdateAuthenticatorCounter persists a new signature counter and returns
// the updated credential. The adapter stores whatever counter value it is
// given; rejecting non-increasing values is the caller's concern. An update
// matching no row yields "Failed to update authenticator counter".
func (a *Adapter) UpdateAuthenticatorCounter(ctx context.Context, credentialID string, counter int64) (*Authenticator, error) {
	updated, err := a.repos.Authenticators(a.db).UpdateCounter(ctx, credentialID, counter)
	if err != nil {
		a.countError("update_authenticator_counter")
		if errors.Is(err, common.ErrorNotFound) {
			return nil, &PersistenceError{msg: msgUpdateCounterFailed, err: err}
		}
		return nil, fmt.Errorf("error updating authenticator counter: %w", err)
	}
	return externalAuthenticator(updated), nil
}
