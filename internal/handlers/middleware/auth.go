package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fluyo/backend/internal/apperrors"
	"github.com/fluyo/backend/internal/handlers/render"
	"github.com/fluyo/backend/internal/handlers/userctx"
	"github.com/fluyo/backend/internal/models"
)

const bearerScheme = "Bearer"

var (
	ErrAuthHeaderMissing   = errors.New("authorization header required")
	ErrAuthHeaderMalformed = errors.New("malformed authorization header")
)

type authenticator interface {
	// Resolve bearer token to the user it was issued for.
	// Has to return one of the token sentinels from apperrors or apperrors.ErrUserNotFound.
	Authenticate(ctx context.Context, token string) (models.UserInfo, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", ErrAuthHeaderMissing
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", ErrAuthHeaderMalformed
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrAuthHeaderMalformed
	}

	return token, nil
}

func AuthMiddleware(as authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err == nil {
				var user models.UserInfo
				user, err = as.Authenticate(r.Context(), token)
				if err == nil {
					ctx := userctx.New(r.Context(), user, token)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			code, message := authErrorStatus(err)
			if code == http.StatusUnauthorized {
				w.Header().Set("WWW-Authenticate", bearerScheme)
			}
			render.ServiceError(w, message, code)
		})
	}
}

func authErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrAuthHeaderMissing):
		return http.StatusUnauthorized, "Authorization header required"
	case errors.Is(err, ErrAuthHeaderMalformed):
		return http.StatusBadRequest, "Malformed authorization header"
	case errors.Is(err, apperrors.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return http.StatusUnauthorized, "Token not found"
	case errors.Is(err, apperrors.ErrTokenRevoked):
		return http.StatusForbidden, "Token revoked"
	case errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
