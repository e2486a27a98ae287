package handlers

import (
	"context"
	"net/http"

	"github.com/fluyo/backend/internal/handlers/middleware"
	"github.com/fluyo/backend/internal/logger"
	"github.com/fluyo/backend/internal/models"
	"github.com/fluyo/backend/internal/repository"
	"github.com/fluyo/backend/internal/service/company"
	"github.com/fluyo/backend/internal/service/user"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// NewRouter mounts the JSON API under /api and the metrics handler (if any) under /metrics
func NewRouter(
	authService authService,
	userService userService,
	companyService companyService,
	metrics http.Handler,
	logger logger.Logger,
) http.Handler {
	withAuth := middleware.AuthMiddleware(authService)

	api := http.NewServeMux()

	api.Handle("POST /login", handleLogin(authService, logger))
	api.Handle("POST /logout", withAuth(handleLogout(authService, logger)))
	api.Handle("POST /logout/all", withAuth(handleLogoutAll(authService, logger)))

	api.Handle("POST /users", handleRegister(userService, logger))
	api.Handle("GET /users/me", withAuth(handleUserMe()))
	api.Handle("PATCH /users/me", withAuth(handleUpdateMe(userService, logger)))
	api.Handle("GET /hello", withAuth(handleHello()))

	api.Handle("POST /companies", withAuth(handleCreateCompany(companyService, logger)))
	api.Handle("GET /companies", withAuth(handleListCompanies(companyService, logger)))
	api.Handle("GET /companies/{id}", withAuth(handleGetCompany(companyService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if metrics != nil {
		root.Handle("GET /metrics", metrics)
	}

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Login user with email and password
	// Has to return apperrors.ErrUserNotFound if user not found,
	// apperrors.ErrIncorrectPassword on mismatch and apperrors.ErrTokenGeneration if session could not be started
	Login(ctx context.Context, email string, password string) (models.IssuedToken, error)

	// Resolve bearer token to the user
	Authenticate(ctx context.Context, token string) (models.UserInfo, error)

	// Revoke the session of the token. Reports whether something changed
	Logout(ctx context.Context, token string) (bool, error)

	// Revoke every session of the user
	LogoutAll(ctx context.Context, userID string) (int64, error)
}

type userService interface {
	// Has to return apperrors.ErrEmailAlreadyExists or apperrors.ErrWeakPassword on bad input
	Register(ctx context.Context, p user.RegisterParams) (models.UserInfo, error)
	UpdateProfile(ctx context.Context, userID string, p repository.UpdateUserParams) (models.UserInfo, error)
}

type companyService interface {
	// Has to return apperrors.ErrCompanyAlreadyExists for duplicated name
	Create(ctx context.Context, adminUserID string, p company.CreateParams) (models.Company, error)
	// Has to return apperrors.ErrCompanyNotFound if user can't see the company
	Get(ctx context.Context, id string, userID string) (models.Company, error)
	ListByUser(ctx context.Context, userID string) ([]models.Company, error)
}
