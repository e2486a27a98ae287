package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fluyo/backend/internal/apperrors"
	"github.com/fluyo/backend/internal/logger"
	"github.com/fluyo/backend/internal/models"
	"github.com/fluyo/backend/internal/repository"
	"github.com/fluyo/backend/internal/service/auth/tokenmanager"
)

type tokenManager interface {
	Issue(user models.User) (models.IssuedToken, tokenmanager.Claims, error)
	Decode(token string) (tokenmanager.Claims, error)
	Expired(claims tokenmanager.Claims) bool
}

type passwordComparer interface {
	// Must return apperrors.ErrIncorrectPassword on mismatch
	Compare(hashedPassword string, password string) error
}

// Observer is told the outcome of every login and token validation, err is nil on success.
type Observer interface {
	ObserveLogin(err error)
	ObserveAuthentication(err error)
}

type noopObserver struct{}

func (noopObserver) ObserveLogin(error)          {}
func (noopObserver) ObserveAuthentication(error) {}

type Config struct {
	// Hasher used to check passwords on login
	// DefaultHasher if not set
	Hasher passwordComparer

	Logger   logger.Logger
	Observer Observer
}

type AuthService struct {
	tokens   tokenManager
	hasher   passwordComparer
	storage  repository.Storage
	logger   logger.Logger
	observer Observer
}

func NewService(cfg Config, tokens tokenManager, storage repository.Storage) (*AuthService, error) {
	if tokens == nil || storage == nil {
		return nil, errors.New("token manager and storage must not be nil")
	}

	if cfg.Hasher == nil {
		cfg.Hasher = DefaultHasher
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}
	if cfg.Observer == nil {
		cfg.Observer = noopObserver{}
	}

	return &AuthService{
		tokens:   tokens,
		hasher:   cfg.Hasher,
		storage:  storage,
		logger:   cfg.Logger,
		observer: cfg.Observer,
	}, nil
}

// NormalizeEmail is applied to emails before they are stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks credentials and issues a token, superseding every other session of the user.
// Once credentials are accepted any failure is reported as apperrors.ErrTokenGeneration.
func (s *AuthService) Login(ctx context.Context, email string, password string) (token models.IssuedToken, err error) {
	defer func() { s.observer.ObserveLogin(err) }()

	user, err := s.storage.User().GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		s.logger.Debug("Login rejected", "error", err)
		return token, fmt.Errorf("login: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("Login rejected", "user_id", user.ID, "error", err)
		return token, fmt.Errorf("login: %w", err)
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("%w: %w", apperrors.ErrTokenGeneration, err)
	}

	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		revoked, err := st.Session().RevokeAllForUser(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("revoke previous sessions: %w", err)
		}
		if revoked > 0 {
			s.logger.Debug("Previous sessions revoked", "user_id", user.ID, "count", revoked)
		}

		_, err = st.Session().Create(ctx, models.Session{
			UserID:    user.ID,
			Token:     token.Value,
			CreatedAt: claims.IssuedAt,
			ExpiresAt: claims.ExpiresAt,
		})
		if err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Login failed after credentials accepted", "user_id", user.ID, "error", err)
		return models.IssuedToken{}, fmt.Errorf("%w: %w", apperrors.ErrTokenGeneration, err)
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return token, nil
}

// Authenticate resolves a bearer token to the identity of its owner.
// Checks run in a fixed order, the first failing one decides the error:
// malformed or expired token, unknown session, revoked session, expired claims, missing user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (info models.UserInfo, err error) {
	defer func() { s.observer.ObserveAuthentication(err) }()

	claims, err := s.tokens.Decode(token)
	if err != nil {
		return info, fmt.Errorf("authenticate: %w", err)
	}

	session, err := s.storage.Session().GetByToken(ctx, token)
	if err != nil {
		return info, fmt.Errorf("authenticate: %w", err)
	}

	if session.Revoked {
		return info, fmt.Errorf("authenticate: %w", apperrors.ErrTokenRevoked)
	}

	if s.tokens.Expired(claims) {
		return info, fmt.Errorf("authenticate: %w", apperrors.ErrTokenExpired)
	}

	user, err := s.storage.User().GetUserByID(ctx, claims.UserID)
	if err != nil {
		return info, fmt.Errorf("authenticate: %w", err)
	}

	return user.Info(), nil
}

// Logout revokes the session of the token. Reports whether anything changed.
func (s *AuthService) Logout(ctx context.Context, token string) (bool, error) {
	revoked, err := s.storage.Session().Revoke(ctx, token)
	if err != nil {
		return false, fmt.Errorf("logout: %w", err)
	}

	return revoked, nil
}

// LogoutAll revokes every active session of the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	revoked, err := s.storage.Session().RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("logout all: %w", err)
	}

	s.logger.Info("User sessions revoked", "user_id", userID, "count", revoked)
	return revoked, nil
}
