package httpapi

import (
	"time"

	"identikit/internal/adapter"
	"identikit/internal/server/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

type resolveUserRequest struct {
	ProviderAccountID string     `json:"providerAccountId"`
	Email             *string    `json:"email"`
	Name              *string    `json:"name"`
	Image             *string    `json:"image"`
	EmailVerified     *time.Time `json:"emailVerified"`
}

// accountPayload mirrors the framework's account shape: camelCase for the
// link identity, snake_case for the provider-issued token fields.
type accountPayload struct {
	UserID            string  `json:"userId"`
	Provider          string  `json:"provider"`
	ProviderAccountID string  `json:"providerAccountId"`
	Type              string  `json:"type"`
	RefreshToken      *string `json:"refresh_token"`
	AccessToken       *string `json:"access_token"`
	ExpiresAt         *int64  `json:"expires_at"`
	TokenType         *string `json:"token_type"`
	Scope             *string `json:"scope"`
	IDToken           *string `json:"id_token"`
	SessionState      *string `json:"session_state"`
}

func (p accountPayload) toModel() models.Account {
	return models.Account{
		UserID:            p.UserID,
		Provider:          p.Provider,
		ProviderAccountID: p.ProviderAccountID,
		Type:              p.Type,
		RefreshToken:      p.RefreshToken,
		AccessToken:       p.AccessToken,
		ExpiresAt:         p.ExpiresAt,
		TokenType:         p.TokenType,
		Scope:             p.Scope,
		IDToken:           p.IDToken,
		SessionState:      p.SessionState,
	}
}

func accountFromModel(m *models.Account) accountPayload {
	return accountPayload{
		UserID:            m.UserID,
		Provider:          m.Provider,
		ProviderAccountID: m.ProviderAccountID,
		Type:              m.Type,
		RefreshToken:      m.RefreshToken,
		AccessToken:       m.AccessToken,
		ExpiresAt:         m.ExpiresAt,
		TokenType:         m.TokenType,
		Scope:             m.Scope,
		IDToken:           m.IDToken,
		SessionState:      m.SessionState,
	}
}

type sessionPayload struct {
	SessionToken string    `json:"sessionToken"`
	UserID       string    `json:"userId"`
	Expires      time.Time `json:"expires"`
}

func (p sessionPayload) toModel() models.Session {
	return models.Session{SessionToken: p.SessionToken, UserID: p.UserID, Expires: p.Expires}
}

func sessionFromModel(m *models.Session) sessionPayload {
	return sessionPayload{SessionToken: m.SessionToken, UserID: m.UserID, Expires: m.Expires}
}

type sessionAndUserResponse struct {
	Session sessionPayload        `json:"session"`
	User    *adapter.ExternalUser `json:"user"`
}

type updateSessionRequest struct {
	Expires time.Time `json:"expires"`
}

type verificationTokenPayload struct {
	Identifier string    `json:"identifier"`
	Token      string    `json:"token"`
	Expires    time.Time `json:"expires"`
}

func (p verificationTokenPayload) toModel() models.VerificationToken {
	return models.VerificationToken{Identifier: p.Identifier, Token: p.Token, Expires: p.Expires}
}

func verificationTokenFromModel(m *models.VerificationToken) verificationTokenPayload {
	return verificationTokenPayload{Identifier: m.Identifier, Token: m.Token, Expires: m.Expires}
}

type consumeTokenRequest struct {
	Identifier string `json:"identifier"`
	Token      string `json:"token"`
}

type updateCounterRequest struct {
	Counter int64 `json:"counter"`
}

type providerLinkRequest struct {
	Provider          string `json:"provider"`
	ProviderAccountID string `json:"providerAccountId"`
}

type safeUpdateUserRequest struct {
	Provider          string     `json:"provider"`
	ProviderAccountID string     `json:"providerAccountId"`
	Email             *string    `json:"email"`
	Name              *string    `json:"name"`
	Image             *string    `json:"image"`
	EmailVerified     *time.Time `json:"emailVerified"`
}
