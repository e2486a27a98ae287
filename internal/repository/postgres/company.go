package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fluyo/backend/internal/apperrors"
	"github.com/fluyo/backend/internal/models"
)

type CompanyRepo struct {
	DB DBTX
}

const companyColumns = `id, name, nit, address, phone, email, admin_user_id, users, created_at`

const createCompany = `-- name: CreateCompany
INSERT INTO companies (id, name, nit, address, phone, email, admin_user_id, users, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + companyColumns

func (r *CompanyRepo) Create(ctx context.Context, c models.Company) (models.Company, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.Users == nil {
		c.Users = []string{}
	}

	rows, _ := r.DB.Query(ctx, createCompany, c.ID, c.Name, c.NIT, c.Address, c.Phone, c.Email, c.AdminUserID, c.Users, c.CreatedAt)
	company, err := pgx.CollectOneRow(rows, rowToCompany)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return company, fmt.Errorf("repo error: %w", apperrors.ErrCompanyAlreadyExists)
		}

		return company, fmt.Errorf("db error: %w", err)
	}

	return company, nil
}

const getCompanyByID = `-- name: GetCompanyByID
SELECT ` + companyColumns + `
FROM companies
WHERE id = $1
`

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (models.Company, error) {
	rows, _ := r.DB.Query(ctx, getCompanyByID, id)
	company, err := pgx.CollectOneRow(rows, rowToCompany)

	switch {
	case err == nil:
		return company, nil
	case errors.Is(err, pgx.ErrNoRows):
		return company, fmt.Errorf("repo error: %w", apperrors.ErrCompanyNotFound)
	default:
		return company, fmt.Errorf("db error: %w", err)
	}
}

const listCompaniesByUser = `-- name: ListCompaniesByUser
SELECT ` + companyColumns + `
FROM companies
WHERE admin_user_id = $1 OR $1 = ANY(users)
ORDER BY created_at, id
`

func (r *CompanyRepo) ListByUser(ctx context.Context, userID string) ([]models.Company, error) {
	rows, _ := r.DB.Query(ctx, listCompaniesByUser, userID)
	companies, err := pgx.CollectRows(rows, rowToCompany)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return companies, nil
}

func rowToCompany(row pgx.CollectableRow) (models.Company, error) {
	var c models.Company
	err := row.Scan(&c.ID, &c.Name, &c.NIT, &c.Address, &c.Phone, &c.Email, &c.AdminUserID, &c.Users, &c.CreatedAt)
	return c, err
}
