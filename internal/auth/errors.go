package auth

import "errors"

var (
	ErrNotFound      = errors.New("auth: not found")
	ErrAlreadyExists = errors.New("auth: already exists")
	ErrInvalidInput  = errors.New("auth: invalid input")
	ErrUnauthorized  = errors.New("auth: unauthorized")
)

// Token verification failures. VerifyAccess and VerifyRefresh fail with
// exactly one of these so callers can tell "refresh and retry" apart from
// "re-login".
var (
	ErrTokenExpired      = errors.New("auth: token expired")
	ErrTokenMalformed    = errors.New("auth: token malformed")
	ErrTokenVerification = errors.New("auth: token verification failed")
)
