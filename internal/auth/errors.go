package auth

import (
	"errors"
	"net/http"
)

// Kind classifies why a request failed authorization.
type Kind int

const (
	KindMissingHeader Kind = iota + 1
	KindMalformedHeader
	KindMalformedToken
	KindKeySetUnavailable
	KindUnresolvableKey
	KindExpired
	KindClaimMismatch
	KindInvalidToken
	KindMissingPermissions
	KindInsufficientPermission
)

// Short codes reported alongside every failure.
const (
	CodeHeaderMissing = "authorization_header_missing"
	CodeInvalidHeader = "invalid_header"
	CodeTokenExpired  = "token_expired"
	CodeInvalidClaims = "invalid_claims"
	CodeUnauthorized  = "unauthorized"
)

// Error is an authentication or authorization failure.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Status  int
	Err     error
}

func newError(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Status: http.StatusUnauthorized, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status for the failure.
func (e *Error) StatusCode() int { return e.Status }

// ErrorCode returns the machine-readable short code.
func (e *Error) ErrorCode() string { return e.Code }

// Description returns the client-facing message.
func (e *Error) Description() string { return e.Message }

// KindOf extracts the failure kind, or 0 when err is not an auth error.
func KindOf(err error) Kind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return 0
}
