package domain

import "errors"

// AuthError means the credential is missing or was rejected by the backend.
// It is the only error class that forces the session back to the
// unauthenticated state.
type AuthError struct {
	Op  string // Operation that failed (e.g., "login", "get customer")
	Err error  // Underlying error, may be nil for a plain rejection
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "auth: " + e.Op
	}
	return "auth: " + e.Op + ": " + e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsAuth checks whether an error is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// ValidationError is raised before any network call is made. The input is
// rejected locally and the backend never sees the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// IsValidation checks whether an error is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// BackendError is a non-2xx response carrying the backend's own message.
// The message is surfaced to the user verbatim.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

// NetworkError means the request never completed. Previously displayed
// state stays valid; the triggering action can simply be retried.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

var (
	// ErrNoCredential is returned when an authenticated endpoint is called
	// without a stored credential. This is a caller bug, not a wire condition.
	ErrNoCredential = errors.New("no credential")

	// ErrConfigNotFound is returned when the configuration file is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)
