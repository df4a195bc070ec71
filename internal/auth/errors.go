package auth

import "errors"

// Outcomes of the auth operations. Callers match them with errors.Is; anything
// else returned by Service is a server error.
var (
	ErrValidation            = errors.New("all fields are required")
	ErrDuplicateAccount      = errors.New("user already exists")
	ErrNotFound              = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrEmailDelivery         = errors.New("email could not be sent")

	// ErrMissingSecret means the token service has no signing key.
	ErrMissingSecret = errors.New("token signing secret is not configured")
)
