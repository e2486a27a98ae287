package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/fluyo/backend/internal/apperrors"
	"github.com/fluyo/backend/internal/models"
)

type SessionRepo struct {
	DB DBTX
}

const createSession = `-- name: CreateSession
INSERT INTO sessions (id, user_id, token, revoked, revoked_at, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, user_id, token, revoked, revoked_at, created_at, expires_at
`

func (r *SessionRepo) Create(ctx context.Context, s models.Session) (models.Session, error) {
	if s.ID == "" {
		s.ID = ulid.Make().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	rows, _ := r.DB.Query(ctx, createSession, s.ID, s.UserID, s.Token, s.Revoked, s.RevokedAt, s.CreatedAt, s.ExpiresAt)
	session, err := pgx.CollectOneRow(rows, rowToSession)
	if err != nil {
		return session, fmt.Errorf("db error: %w", err)
	}

	return session, nil
}

const getSessionByToken = `-- name: GetSessionByToken
SELECT id, user_id, token, revoked, revoked_at, created_at, expires_at
FROM sessions
WHERE token = $1
`

// GetByToken returns the session even if it is revoked or expired
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (models.Session, error) {
	rows, _ := r.DB.Query(ctx, getSessionByToken, token)
	session, err := pgx.CollectOneRow(rows, rowToSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, fmt.Errorf("repo error: %w", apperrors.ErrTokenNotFound)
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

const revokeSession = `-- name: RevokeSession
UPDATE sessions
SET revoked = TRUE, revoked_at = $2
WHERE token = $1 AND NOT revoked
`

func (r *SessionRepo) Revoke(ctx context.Context, token string) (bool, error) {
	tag, err := r.DB.Exec(ctx, revokeSession, token, time.Now())
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// Held until the surrounding transaction ends, so logins of one user run one after another
const lockUserSessions = `-- name: LockUserSessions
SELECT pg_advisory_xact_lock(hashtextextended($1, 0))
`

const revokeUserSessions = `-- name: RevokeUserSessions
UPDATE sessions
SET revoked = TRUE, revoked_at = $2
WHERE user_id = $1 AND NOT revoked
`

func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	if _, err := r.DB.Exec(ctx, lockUserSessions, userID); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	tag, err := r.DB.Exec(ctx, revokeUserSessions, userID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

const deleteExpiredSessions = `-- name: DeleteExpiredSessions
DELETE FROM sessions
WHERE expires_at < $1
`

func (r *SessionRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteExpiredSessions, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

func rowToSession(row pgx.CollectableRow) (models.Session, error) {
	var s models.Session
	err := row.Scan(&s.ID, &s.UserID, &s.Token, &s.Revoked, &s.RevokedAt, &s.CreatedAt, &s.ExpiresAt)
	return s, err
}
