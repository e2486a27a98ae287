package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fluyo/backend/internal/apperrors"
	"github.com/fluyo/backend/internal/models"
)

const (
	defaultTokenTTL      = 24 * time.Hour
	defaultSigningMethod = "HS256"
)

// Claims carried by an access token.
type Claims struct {
	ID        string // jti, unique per issued token
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// jwtClaims is the wire form: user_id and email next to the registered claims.
type jwtClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// Token manager with sensible defaults
type Config struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm, HS256 if not set
	Alg string

	// Access token lifetime, 24h if not set
	TTL time.Duration

	// Clock used both to stamp and to validate tokens, time.Now if not set
	Now func() time.Time
}

// TokenManager encodes and decodes access tokens. It does no I/O.
type TokenManager struct {
	key []byte
	alg jwt.SigningMethod
	ttl time.Duration
	now func() time.Time
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	if cfg.TTL == 0 {
		cfg.TTL = defaultTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	alg, ok := jwt.GetSigningMethod(cfg.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("signing method %q is not supported, use one of HS256, HS384, HS512", cfg.Alg)
	}

	return &TokenManager{
		key: []byte(cfg.SecretKey),
		alg: alg,
		ttl: cfg.TTL,
		now: cfg.Now,
	}, nil
}

// Issue creates a token for the user that expires TTL from now.
func (m *TokenManager) Issue(user models.User) (models.IssuedToken, Claims, error) {
	now := m.now().UTC().Truncate(time.Second)
	claims := Claims{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	value, err := m.Encode(claims)
	if err != nil {
		return models.IssuedToken{}, claims, err
	}

	return models.IssuedToken{Value: value, ExpiresAt: claims.ExpiresAt}, claims, nil
}

func (m *TokenManager) Encode(c Claims) (string, error) {
	if c.UserID == "" {
		return "", errors.New("token must carry user id")
	}
	if c.ExpiresAt.IsZero() {
		return "", errors.New("token must carry expiration")
	}

	registered := jwt.RegisteredClaims{
		ID:        c.ID,
		ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
	}
	if !c.IssuedAt.IsZero() {
		registered.IssuedAt = jwt.NewNumericDate(c.IssuedAt)
	}

	s, err := jwt.NewWithClaims(m.alg, jwtClaims{RegisteredClaims: registered, UserID: c.UserID, Email: c.Email}).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("error while signing token: %w", err)
	}

	return s, nil
}

// Decode verifies signature and expiry.
// The token is expired once now >= exp; an expired token with a bad signature is reported as invalid.
func (m *TokenManager) Decode(token string) (Claims, error) {
	parsed := &jwtClaims{}

	_, err := jwt.ParseWithClaims(
		token,
		parsed,
		func(t *jwt.Token) (any, error) {
			return m.key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, fmt.Errorf("%w: %w", apperrors.ErrTokenExpired, err)
	default:
		return Claims{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}

	if parsed.UserID == "" {
		return Claims{}, fmt.Errorf("%w: user_id claim is missing", apperrors.ErrInvalidToken)
	}

	c := Claims{
		ID:        parsed.ID,
		UserID:    parsed.UserID,
		Email:     parsed.Email,
		ExpiresAt: parsed.ExpiresAt.UTC(),
	}
	if parsed.IssuedAt != nil {
		c.IssuedAt = parsed.IssuedAt.UTC()
	}

	return c, nil
}

// Expired re-checks claims against the manager clock.
func (m *TokenManager) Expired(c Claims) bool {
	return !m.now().Before(c.ExpiresAt)
}
