package models

// Authenticator is a WebAuthn-style passkey credential.
//
// Transports is the raw comma-joined column value: nil means the transports
// are unknown, an empty string means the credential explicitly reported none.
type Authenticator struct {
	CredentialID         string
	UserID               string
	ProviderAccountID    string
	CredentialPublicKey  string
	Counter              int64
	CredentialDeviceType string
	CredentialBackedUp   bool
	Transports           *string
}
