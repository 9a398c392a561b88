// Package models contains the row types persisted by the identity store.
package models

import "time"

// User is the canonical identity record. ID is immutable once created.
// Email is nullable at the storage layer but used as a lookup key.
type User struct {
	ID              string
	Email           *string
	DisplayName     *string
	AvatarURL       *string
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
}
