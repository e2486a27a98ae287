package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/fluyo/backend/internal/apperrors"
)

const argon2idPrefix = "$argon2id$"

// Argon2idHasher produces PHC strings:
// $argon2id$v=19$m=<KiB>,t=<iterations>,p=<parallelism>$<salt>$<key>
type Argon2idHasher struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func DefaultArgon2idHasher() Argon2idHasher {
	return Argon2idHasher{
		MemoryKiB:   64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (h Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.Iterations, h.MemoryKiB, h.Parallelism, h.KeyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.MemoryKiB, h.Iterations, h.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key),
	), nil
}

// Compare takes the cost parameters from the digest itself, so hashes made with older settings still verify.
func (h Argon2idHasher) Compare(hashedPassword string, password string) error {
	p, salt, expected, err := decodeArgon2id(hashedPassword)
	if err != nil {
		return err
	}

	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.MemoryKiB, p.Parallelism, uint32(len(expected))) // #nosec G115 -- bounded by decodeArgon2id
	if subtle.ConstantTimeCompare(key, expected) != 1 {
		return apperrors.ErrIncorrectPassword
	}
	return nil
}

func decodeArgon2id(encoded string) (Argon2idHasher, []byte, []byte, error) {
	var p Argon2idHasher

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, apperrors.ErrHashFormat
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return p, nil, nil, fmt.Errorf("%w: unsupported version %q", apperrors.ErrHashFormat, parts[2])
	}

	var par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Iterations, &par); err != nil {
		return p, nil, nil, fmt.Errorf("%w: %w", apperrors.ErrHashFormat, err)
	}
	// Digests are untrusted input; refuse parameters that would make verification a resource sink.
	if p.MemoryKiB == 0 || p.MemoryKiB > 1024*1024 || p.Iterations == 0 || p.Iterations > 64 || par == 0 || par > 255 {
		return p, nil, nil, fmt.Errorf("%w: parameters out of bounds", apperrors.ErrHashFormat)
	}
	p.Parallelism = uint8(par)

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < 8 || len(salt) > 64 {
		return p, nil, nil, fmt.Errorf("%w: bad salt", apperrors.ErrHashFormat)
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) < 16 || len(key) > 128 {
		return p, nil, nil, fmt.Errorf("%w: bad key", apperrors.ErrHashFormat)
	}
	p.SaltLength = uint32(len(salt)) // #nosec G115
	p.KeyLength = uint32(len(key))   // #nosec G115

	return p, salt, key, nil
}
