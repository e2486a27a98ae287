package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fluyo/backend/internal/apperrors"
	"github.com/fluyo/backend/internal/models"
	"github.com/fluyo/backend/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, username, email, password_hash, first_name, last_name, cell_phone, is_active, created_at, updated_at`

const createUser = `-- name: CreateUser
INSERT INTO users (id, username, email, password_hash, first_name, last_name, cell_phone, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, p repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser,
		uuid.NewString(), p.Username, p.Email, p.HashedPassword, p.FirstName, p.LastName, p.CellPhone, p.IsActive,
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, fmt.Errorf("repo error: %w", apperrors.ErrEmailAlreadyExists)
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + `
FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + `
FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const updateUser = `-- name: UpdateUser
UPDATE users
SET username = COALESCE($2, username),
	first_name = COALESCE($3, first_name),
	last_name = COALESCE($4, last_name),
	cell_phone = COALESCE($5, cell_phone),
	updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) UpdateUser(ctx context.Context, id string, p repository.UpdateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateUser, id, p.Username, p.FirstName, p.LastName, p.CellPhone)
	return collectUser(rows)
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, fmt.Errorf("repo error: %w", apperrors.ErrUserNotFound)
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.FirstName, &u.LastName,
		&u.CellPhone, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}
