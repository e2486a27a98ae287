package handlers

import (
	"errors"
	"net/http"

	"github.com/fluyo/backend/internal/apperrors"
	"github.com/fluyo/backend/internal/handlers/render"
	"github.com/fluyo/backend/internal/handlers/userctx"
	"github.com/fluyo/backend/internal/logger"
	"github.com/fluyo/backend/internal/repository"
	"github.com/fluyo/backend/internal/service/user"
)

func handleRegister(userService userService, l logger.Logger) http.Handler {
	type request struct {
		Username  string `json:"username" validate:"required,max=150"`
		Email     string `json:"email" validate:"required,email,max=254"`
		Password  string `json:"password" validate:"required,max=128"`
		FirstName string `json:"first_name" validate:"max=150"`
		LastName  string `json:"last_name" validate:"max=150"`
		CellPhone string `json:"cell_phone" validate:"max=32"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		info, err := userService.Register(r.Context(), user.RegisterParams{
			Username:  data.Username,
			Email:     data.Email,
			Password:  data.Password,
			FirstName: data.FirstName,
			LastName:  data.LastName,
			CellPhone: data.CellPhone,
		})
		switch {
		case err == nil:
			render.Created(w, info)
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
			render.ServiceError(w, "Email already registered", http.StatusConflict)
		case errors.Is(err, apperrors.ErrWeakPassword):
			render.ServiceError(w, err.Error(), http.StatusBadRequest)
		default:
			l.Error("Failed to register user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleUserMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}
		render.JSON(w, user)
	})
}

func handleUpdateMe(userService userService, l logger.Logger) http.Handler {
	type request struct {
		Username  *string `json:"username" validate:"omitnil,min=1,max=150"`
		FirstName *string `json:"first_name" validate:"omitnil,max=150"`
		LastName  *string `json:"last_name" validate:"omitnil,max=150"`
		CellPhone *string `json:"cell_phone" validate:"omitnil,max=32"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		info, err := userService.UpdateProfile(r.Context(), user.ID, repository.UpdateUserParams{
			Username:  data.Username,
			FirstName: data.FirstName,
			LastName:  data.LastName,
			CellPhone: data.CellPhone,
		})
		switch {
		case err == nil:
			render.JSON(w, info)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to update user", "user_id", user.ID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleHello() http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}
		render.JSON(w, response{Message: "Hola, " + user.Username + "!"})
	})
}
