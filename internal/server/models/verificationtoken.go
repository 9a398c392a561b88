package models

import "time"

// VerificationToken is a one-time token for email/magic-link verification.
// The pair (Identifier, Token) is unique while unconsumed.
type VerificationToken struct {
	Identifier string
	Token      string
	Expires    time.Time
}
