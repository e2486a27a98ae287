package repository

import (
	"context"
	"time"

	"github.com/fluyo/backend/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If the email is taken already has to return apperrors.ErrEmailAlreadyExists
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by its id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Update profile fields, bumps updated_at
	// If user not found must return apperrors.ErrUserNotFound
	UpdateUser(ctx context.Context, userID string, params UpdateUserParams) (models.User, error)
}

type CreateUserParams struct {
	Username       string
	Email          string
	HashedPassword string
	FirstName      string
	LastName       string
	CellPhone      string
	IsActive       bool
}

// Nil fields are left untouched
type UpdateUserParams struct {
	Username  *string
	FirstName *string
	LastName  *string
	CellPhone *string
}

// Session repository interface
type SessionRepo interface {
	// Persist a new session, the id is assigned by the repository
	Create(ctx context.Context, session models.Session) (models.Session, error)

	// Return the session by its token, revoked or not
	// If not found must return apperrors.ErrTokenNotFound
	GetByToken(ctx context.Context, token string) (models.Session, error)

	// Revoke the session with the token
	// Returns false if there is no such session or it is revoked already
	Revoke(ctx context.Context, token string) (bool, error)

	// Revoke every active session of the user, already revoked ones are untouched
	// Returns number of sessions revoked by this call
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)

	// Delete sessions expired before the moment
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Company repository interface
type CompanyRepo interface {
	// Create company
	// If the admin already has a company with the name must return apperrors.ErrCompanyAlreadyExists
	Create(ctx context.Context, company models.Company) (models.Company, error)

	// If not found must return apperrors.ErrCompanyNotFound
	GetByID(ctx context.Context, id string) (models.Company, error)

	// Companies the user administers or belongs to, oldest first
	ListByUser(ctx context.Context, userID string) ([]models.Company, error)
}

type Storage interface {
	User() UserRepo
	Session() SessionRepo
	Company() CompanyRepo

	// Run fn against a storage bound to a single unit of work
	// Changes are committed if fn returns nil
	InTx(ctx context.Context, fn func(Storage) error) error
}
