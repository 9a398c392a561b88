package models

// Account links one provider account to one stored user.
// (Provider, ProviderAccountID) identifies at most one row.
// Provider-issued token fields are opaque and passed through unmodified.
type Account struct {
	UserID            string
	Provider          string
	ProviderAccountID string
	Type              string
	RefreshToken      *string
	AccessToken       *string
	ExpiresAt         *int64
	TokenType         *string
	Scope             *string
	IDToken           *string
	SessionState      *string
}
