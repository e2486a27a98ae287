package apperrors

import (
	"errors"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password is too weak")

	ErrIncorrectPassword = errors.New("incorrect password")
	ErrHashFormat        = errors.New("password hash has unknown format")
	ErrTokenGeneration   = errors.New("token generation failed")

	// Session validation outcomes.
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenRevoked  = errors.New("token revoked")

	ErrCompanyAlreadyExists = errors.New("company already exists for this admin")
	ErrCompanyNotFound      = errors.New("company not found")
)
