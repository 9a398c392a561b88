package models

import "time"

// Session is one active framework session, keyed by its opaque token.
type Session struct {
	SessionToken string
	UserID       string
	Expires      time.Time
}
