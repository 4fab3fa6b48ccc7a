package auth

import "errors"

var (
	// ErrUnauthorized means no valid identity was presented.
	ErrUnauthorized = errors.New("auth: unauthorized")
	// ErrForbidden means the identity is valid but the action is denied.
	ErrForbidden = errors.New("auth: forbidden")
)

// AuthErrorKind classifies token verification failures.
type AuthErrorKind string

const (
	ErrorExpired          AuthErrorKind = "expired"
	ErrorMalformed        AuthErrorKind = "malformed"
	ErrorInvalidSignature AuthErrorKind = "invalid_signature"
)

// AuthError is returned by TokenService.Verify. It unwraps to ErrUnauthorized
// so HTTP layers can map every verification failure to 401 with errors.Is.
type AuthError struct {
	Kind AuthErrorKind
}

func (e *AuthError) Error() string {
	return "auth: token " + string(e.Kind)
}

func (e *AuthError) Unwrap() error { return ErrUnauthorized }
