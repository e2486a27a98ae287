package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/fluyo/backend/internal/apperrors"
	"github.com/fluyo/backend/internal/handlers/render"
	"github.com/fluyo/backend/internal/handlers/userctx"
	"github.com/fluyo/backend/internal/logger"
)

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		token, err := authService.Login(r.Context(), data.Email, data.Password)
		switch {
		case err == nil:
			w.Header().Set("Authorization", "Bearer "+token.Value)
			render.JSON(w, response{Token: token.Value, ExpiresAt: token.ExpiresAt})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrIncorrectPassword):
			render.ServiceError(w, "Incorrect password", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrTokenGeneration):
			l.Error("Failed to start session", "error", err)
			render.ServiceError(w, "Token could not be generated", http.StatusInternalServerError)
		default:
			l.Error("Failed to login", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleLogout(authService authService, l logger.Logger) http.Handler {
	type response struct {
		Revoked bool `json:"revoked"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := userctx.TokenFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		revoked, err := authService.Logout(r.Context(), token)
		if err != nil {
			l.Error("Failed to logout", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Revoked: revoked})
	})
}

func handleLogoutAll(authService authService, l logger.Logger) http.Handler {
	type response struct {
		Revoked int64 `json:"revoked"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		n, err := authService.LogoutAll(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to revoke sessions", "user_id", user.ID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Revoked: n})
	})
}
