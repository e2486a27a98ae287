package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/fluyo/backend/internal/apperrors"
	"github.com/fluyo/backend/internal/models"
	"github.com/fluyo/backend/internal/repository"
	"github.com/fluyo/backend/internal/service/auth"
)

const minPasswordLength = 8

type passwordHasher interface {
	Hash(password string) (string, error)
}

type UserService struct {
	hasher  passwordHasher
	storage repository.Storage
}

func NewService(hasher passwordHasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
	}
}

type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	CellPhone string
}

// Register creates an active user. The email is stored normalized and must be unused.
func (s *UserService) Register(ctx context.Context, p RegisterParams) (models.UserInfo, error) {
	email := auth.NormalizeEmail(p.Email)

	_, err := s.storage.User().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return models.UserInfo{}, fmt.Errorf("register: %w", apperrors.ErrEmailAlreadyExists)
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return models.UserInfo{}, fmt.Errorf("register: %w", err)
	}

	if err := ValidatePassword(p.Password); err != nil {
		return models.UserInfo{}, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return models.UserInfo{}, fmt.Errorf("register: hash password: %w", err)
	}

	// The unique index still guards against a concurrent registration of the same email
	user, err := s.storage.User().CreateUser(ctx, repository.CreateUserParams{
		Username:       strings.TrimSpace(p.Username),
		Email:          email,
		HashedPassword: hash,
		FirstName:      strings.TrimSpace(p.FirstName),
		LastName:       strings.TrimSpace(p.LastName),
		CellPhone:      strings.TrimSpace(p.CellPhone),
		IsActive:       true,
	})
	if err != nil {
		return models.UserInfo{}, fmt.Errorf("register: %w", err)
	}

	return user.Info(), nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (models.UserInfo, error) {
	user, err := s.storage.User().GetUserByID(ctx, userID)
	if err != nil {
		return models.UserInfo{}, fmt.Errorf("get user: %w", err)
	}

	return user.Info(), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, p repository.UpdateUserParams) (models.UserInfo, error) {
	user, err := s.storage.User().UpdateUser(ctx, userID, p)
	if err != nil {
		return models.UserInfo{}, fmt.Errorf("update user: %w", err)
	}

	return user.Info(), nil
}

// ValidatePassword requires at least 8 characters with a digit and an upper-case letter.
func ValidatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return fmt.Errorf("%w: at least %d characters required", apperrors.ErrWeakPassword, minPasswordLength)
	}

	var hasDigit, hasUpper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
	}

	if !hasDigit {
		return fmt.Errorf("%w: at least one digit required", apperrors.ErrWeakPassword)
	}
	if !hasUpper {
		return fmt.Errorf("%w: at least one upper-case letter required", apperrors.ErrWeakPassword)
	}

	return nil
}
