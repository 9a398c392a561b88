// Package common defines shared sentinel errors used across the adapter and
// repository layers of identikit. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound  = errors.New("not found")
	ErrorDuplicate = errors.New("duplicate key")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
)
