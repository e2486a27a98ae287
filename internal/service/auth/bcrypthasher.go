package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/fluyo/backend/internal/apperrors"
)

// BcryptHasher pre-hashes with sha256 so passwords longer than bcrypt's 72 bytes still count in full.
type BcryptHasher struct{}

func (h BcryptHasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	hash, err := bcrypt.GenerateFromPassword(sum[:], bcrypt.DefaultCost)
	return string(hash), err
}

// Compare also accepts digests of the raw password, as written by older deployments.
func (h BcryptHasher) Compare(hashedPassword string, password string) error {
	sum := sha256.Sum256([]byte(password))
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), sum[:])
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		err = bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return apperrors.ErrIncorrectPassword
	default:
		return fmt.Errorf("%w: %w", apperrors.ErrHashFormat, err)
	}
}
