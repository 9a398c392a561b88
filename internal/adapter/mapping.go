package adapter

import (
	"strings"
	"time"

	"identikit/internal/server/models"
)

// ExternalIdentity is the framework-provided descriptor of a user prior to
// storage resolution.
type ExternalIdentity struct {
	ProviderAccountID string
	Email             *string
	Name              *string
	Image             *string
	EmailVerified     *time.Time
}

// ExternalUser is a stored user in the shape the framework expects:
// the verified-timestamp, name and avatar fields carry the framework's
// names rather than the storage ones.
type ExternalUser struct {
	ID            string     `json:"id"`
	Email         *string    `json:"email"`
	Name          *string    `json:"name"`
	Image         *string    `json:"image"`
	EmailVerified *time.Time `json:"emailVerified"`
}

// userFromIdentity maps an external identity onto a stored user row with the
// given id. Total and pure; externalUser is its inverse on shared fields.
func userFromIdentity(id string, ident ExternalIdentity) *models.User {
	return &models.User{
		ID:              id,
		Email:           ident.Email,
		DisplayName:     ident.Name,
		AvatarURL:       ident.Image,
		EmailVerifiedAt: ident.EmailVerified,
	}
}

// externalUser maps a stored user row into the framework's user shape.
func externalUser(u *models.User) *ExternalUser {
	if u == nil {
		return nil
	}
	return &ExternalUser{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.DisplayName,
		Image:         u.AvatarURL,
		EmailVerified: u.EmailVerifiedAt,
	}
}

// splitTransports expands the raw transports column into the interface
// shape, preserving the three-way state: nil column means unknown (nil
// slice), empty string means explicitly none (empty slice), otherwise an
// ordered comma-separated list.
func splitTransports(raw *string) []string {
	if raw == nil {
		return nil
	}
	if *raw == "" {
		return []string{}
	}
	return strings.Split(*raw, ",")
}

// joinTransports is the storage-direction inverse of splitTransports.
func joinTransports(transports []string) *string {
	if transports == nil {
		return nil
	}
	joined := strings.Join(transports, ",")
	return &joined
}
