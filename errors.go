package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes exposed on rich errors so HTTP clients and tests can branch on
// failure kind without string matching messages.
const (
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
	TextCodeAlreadyRegistered = "ALREADY_REGISTERED"
	TextCodeBadCredential     = "BAD_CREDENTIAL"
	TextCodeUnauthenticated   = "UNAUTHENTICATED"
	TextCodeForbidden         = "FORBIDDEN"
	TextCodeUploadFailed      = "UPLOAD_FAILED"
	TextCodeDeliveryFailed    = "DELIVERY_FAILED"
)

// ErrTokenExpired is returned when a token's expiry claim is in the past
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned for tampered or undecodable tokens
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrMismatchedHashAndPassword is the single credential failure returned for
// both unknown emails and wrong passwords, so login never reveals which
// addresses are registered.
var ErrMismatchedHashAndPassword = errors.New("invalid credentials", errors.CategoryAuth).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeBadCredential)

// ErrAlreadyRegistered is returned when a principal with the candidate's
// email already exists in the target collection.
var ErrAlreadyRegistered = errors.New("an account with this email already exists", errors.CategoryConflict).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeAlreadyRegistered)

// ErrUnauthenticated is the gate's short-circuit error for requests with an
// absent, invalid, or expired session credential.
var ErrUnauthenticated = errors.New("please login to continue", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeUnauthenticated)

// ErrPrincipalNotFound is returned when a verified session token resolves to
// no live principal record.
var ErrPrincipalNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrNoEmptyString rejects empty password input before hashing
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// IsTokenExpiredError checks for expired token errors, including ones raised
// by the jwt library before they are wrapped.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError checks for undecodable or tampered token errors
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}

	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsUniqueViolation detects a storage-level uniqueness failure. The unique
// index on email is the authoritative guard against double registration; the
// in-flow existence check is only a fast fail.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
