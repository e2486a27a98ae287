package auth

import (
	"fmt"
	"strings"

	"github.com/fluyo/backend/internal/apperrors"
)

const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// DefaultHasher hashes with bcrypt
var DefaultHasher = PasswordHasher{primary: BcryptHasher{}, argon2id: DefaultArgon2idHasher()}

// PasswordHasher hashes with the configured algorithm and verifies digests of any supported algorithm.
// Switching the configured algorithm keeps existing credentials valid.
type PasswordHasher struct {
	primary interface {
		Hash(password string) (string, error)
	}
	bcrypt   BcryptHasher
	argon2id Argon2idHasher
}

func NewPasswordHasher(alg string) (PasswordHasher, error) {
	h := PasswordHasher{argon2id: DefaultArgon2idHasher()}

	switch alg {
	case "", HasherBcrypt:
		h.primary = h.bcrypt
	case HasherArgon2id:
		h.primary = h.argon2id
	default:
		return h, fmt.Errorf("unknown password hasher %q", alg)
	}

	return h, nil
}

func (h PasswordHasher) Hash(password string) (string, error) {
	return h.primary.Hash(password)
}

// Compare returns nil on match, apperrors.ErrIncorrectPassword on mismatch
// and apperrors.ErrHashFormat when the digest is not recognized.
func (h PasswordHasher) Compare(hashedPassword string, password string) error {
	switch {
	case strings.HasPrefix(hashedPassword, argon2idPrefix):
		return h.argon2id.Compare(hashedPassword, password)
	case strings.HasPrefix(hashedPassword, "$2"):
		return h.bcrypt.Compare(hashedPassword, password)
	default:
		return apperrors.ErrHashFormat
	}
}
