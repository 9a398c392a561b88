package adapter

// Error message strings are part of the adapter's contract; existing
// framework callers match on them verbatim.
const (
	msgUserNotFound             = "User not found"
	msgUpdateUserFailed         = "Failed to update user"
	msgDeleteUserNotFound       = "Delete User not found"
	msgCreateAccountFailed      = "Failed to create account"
	msgCreateSessionFailed      = "Failed to create session"
	msgUpdateSessionFailed      = "Failed to update session"
	msgGetAuthenticatorFailed   = "Failed to get authenticator"
	msgListAuthenticatorsFailed = "Failed to get authenticator list"
	msgUpdateCounterFailed      = "Failed to update authenticator counter"
)

// NotFoundError reports the absence of an entity the framework expected to
// exist. Error() returns exactly the contract message.
type NotFoundError struct {
	msg string
	err error
}

// NewNotFoundError wraps err under the given contract message.
func NewNotFoundError(msg string, err error) *NotFoundError {
	return &NotFoundError{msg: msg, err: err}
}

func (e *NotFoundError) Error() string { return e.msg }

func (e *NotFoundError) Unwrap() error { return e.err }

// PersistenceError reports a mutation that did not persist a row.
// Error() returns exactly the contract message.
type PersistenceError struct {
	msg string
	err error
}

// NewPersistenceError wraps err under the given contract message.
func NewPersistenceError(msg string, err error) *PersistenceError {
	return &PersistenceError{msg: msg, err: err}
}

func (e *PersistenceError) Error() string { return e.msg }

func (e *PersistenceError) Unwrap() error { return e.err }
