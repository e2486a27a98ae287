package handlers

import (
	"errors"
	"net/http"

	"github.com/fluyo/backend/internal/apperrors"
	"github.com/fluyo/backend/internal/handlers/render"
	"github.com/fluyo/backend/internal/handlers/userctx"
	"github.com/fluyo/backend/internal/logger"
	"github.com/fluyo/backend/internal/models"
	"github.com/fluyo/backend/internal/service/company"
)

func handleCreateCompany(companyService companyService, l logger.Logger) http.Handler {
	type request struct {
		Name    string   `json:"name" validate:"required,max=200"`
		NIT     string   `json:"nit" validate:"required,max=32"`
		Address string   `json:"address" validate:"max=300"`
		Phone   string   `json:"phone" validate:"max=32"`
		Email   string   `json:"email" validate:"omitempty,email"`
		Users   []string `json:"users" validate:"omitempty,dive,required"`
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

		c, err := companyService.Create(r.Context(), user.ID, company.CreateParams{
			Name:    data.Name,
			NIT:     data.NIT,
			Address: data.Address,
			Phone:   data.Phone,
			Email:   data.Email,
			Users:   data.Users,
		})
		switch {
		case err == nil:
			render.Created(w, c)
		case errors.Is(err, apperrors.ErrCompanyAlreadyExists):
			render.ServiceError(w, "Company already exists", http.StatusConflict)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to create company", "user_id", user.ID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleGetCompany(companyService companyService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		c, err := companyService.Get(r.Context(), r.PathValue("id"), user.ID)
		switch {
		case err == nil:
			render.JSON(w, c)
		case errors.Is(err, apperrors.ErrCompanyNotFound):
			render.ServiceError(w, "Company not found", http.StatusNotFound)
		default:
			l.Error("Failed to get company", "user_id", user.ID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListCompanies(companyService companyService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		companies, err := companyService.ListByUser(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to list companies", "user_id", user.ID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		// Render empty list as [] rather than null
		if companies == nil {
			companies = []models.Company{}
		}
		render.JSON(w, companies)
	})
}
