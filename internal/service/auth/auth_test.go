package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluyo/backend/internal/apperrors"
	"github.com/fluyo/backend/internal/logger"
	"github.com/fluyo/backend/internal/models"
	"github.com/fluyo/backend/internal/repository"
	"github.com/fluyo/backend/internal/service/auth/tokenmanager"
)

// memStorage keeps users and sessions in maps, enough to drive AuthService without a database.
type memStorage struct {
	users    map[string]models.User
	sessions map[string]models.Session

	failRevokeAll error
	failCreate    error
}

func newMemStorage() *memStorage {
	return &memStorage{users: map[string]models.User{}, sessions: map[string]models.Session{}}
}

func (m *memStorage) User() repository.UserRepo       { return memUsers{m} }
func (m *memStorage) Session() repository.SessionRepo { return memSessions{m} }
func (m *memStorage) Company() repository.CompanyRepo { return nil }

func (m *memStorage) InTx(_ context.Context, fn func(repository.Storage) error) error {
	return fn(m)
}

type memUsers struct{ m *memStorage }

func (r memUsers) CreateUser(_ context.Context, p repository.CreateUserParams) (models.User, error) {
	for _, u := range r.m.users {
		if u.Email == p.Email {
			return models.User{}, apperrors.ErrEmailAlreadyExists
		}
	}
	u := models.User{
		ID:             "user-" + p.Email,
		Username:       p.Username,
		Email:          p.Email,
		HashedPassword: p.HashedPassword,
		IsActive:       p.IsActive,
	}
	r.m.users[u.ID] = u
	return u, nil
}

func (r memUsers) GetUserByID(_ context.Context, id string) (models.User, error) {
	u, ok := r.m.users[id]
	if !ok {
		return u, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (r memUsers) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range r.m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, apperrors.ErrUserNotFound
}

func (r memUsers) UpdateUser(_ context.Context, id string, _ repository.UpdateUserParams) (models.User, error) {
	return r.GetUserByID(context.Background(), id)
}

type memSessions struct{ m *memStorage }

func (r memSessions) Create(_ context.Context, s models.Session) (models.Session, error) {
	if r.m.failCreate != nil {
		return s, r.m.failCreate
	}
	s.ID = "session-" + s.Token
	r.m.sessions[s.Token] = s
	return s, nil
}

func (r memSessions) GetByToken(_ context.Context, token string) (models.Session, error) {
	s, ok := r.m.sessions[token]
	if !ok {
		return s, apperrors.ErrTokenNotFound
	}
	return s, nil
}

func (r memSessions) Revoke(_ context.Context, token string) (bool, error) {
	s, ok := r.m.sessions[token]
	if !ok || s.Revoked {
		return false, nil
	}
	now := time.Now()
	s.Revoked, s.RevokedAt = true, &now
	r.m.sessions[token] = s
	return true, nil
}

func (r memSessions) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	if r.m.failRevokeAll != nil {
		return 0, r.m.failRevokeAll
	}
	var n int64
	for token, s := range r.m.sessions {
		if s.UserID == userID && !s.Revoked {
			ok, _ := r.Revoke(ctx, token)
			if ok {
				n++
			}
		}
	}
	return n, nil
}

func (r memSessions) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for token, s := range r.m.sessions {
		if s.ExpiresAt.Before(before) {
			delete(r.m.sessions, token)
			n++
		}
	}
	return n, nil
}

func (m *memStorage) activeSessions(userID string) int {
	n := 0
	for _, s := range m.sessions {
		if s.UserID == userID && !s.Revoked {
			n++
		}
	}
	return n
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type recordingObserver struct {
	logins []error
	auths  []error
}

func (o *recordingObserver) ObserveLogin(err error)          { o.logins = append(o.logins, err) }
func (o *recordingObserver) ObserveAuthentication(err error) { o.auths = append(o.auths, err) }

// recordingLogger keeps debug records so tests can check what gets logged
type recordingLogger struct {
	args [][]any
}

func (l *recordingLogger) Debug(_ string, args ...any) { l.args = append(l.args, args) }
func (l *recordingLogger) Info(string, ...any)         {}
func (l *recordingLogger) Warn(string, ...any)         {}
func (l *recordingLogger) Error(string, ...any)        {}
func (l *recordingLogger) With(...any) logger.Logger   { return l }
func (l *recordingLogger) WithGroup(string) logger.Logger {
	return l
}

type fixture struct {
	svc      *AuthService
	storage  *memStorage
	clock    *clock
	observer *recordingObserver
	user     models.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	c := &clock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	tokens, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret-key", Now: c.Now})
	require.NoError(t, err)

	storage := newMemStorage()
	hash, err := BcryptHasher{}.Hash("Abcdef12")
	require.NoError(t, err)
	user, err := storage.User().CreateUser(t.Context(), repository.CreateUserParams{
		Username:       "alice",
		Email:          "a@x.com",
		HashedPassword: hash,
		IsActive:       true,
	})
	require.NoError(t, err)

	observer := &recordingObserver{}
	svc, err := NewService(Config{Observer: observer}, tokens, storage)
	require.NoError(t, err)

	return fixture{svc: svc, storage: storage, clock: c, observer: observer, user: user}
}

func Test_Auth(t *testing.T) {
	t.Parallel()

	t.Run("new service requires dependencies", func(t *testing.T) {
		_, err := NewService(Config{}, nil, nil)

		require.Error(t, err)
	})

	t.Run("rejected login keeps submitted email out of logs", func(t *testing.T) {
		f := newFixture(t)
		l := &recordingLogger{}
		f.svc.logger = l

		_, err := f.svc.Login(t.Context(), "Someone@Secret.example", "Abcdef12")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		_, err = f.svc.Login(t.Context(), "a@x.com", "wrong-password")
		require.ErrorIs(t, err, apperrors.ErrIncorrectPassword)

		require.Len(t, l.args, 2)
		for _, args := range l.args {
			for _, v := range args {
				assert.NotEqual(t, "email", v)
				assert.NotContains(t, fmt.Sprint(v), "Secret.example")
			}
		}
	})

	t.Run("second login supersedes the first", func(t *testing.T) {
		f := newFixture(t)

		t1, err := f.svc.Login(t.Context(), "a@x.com", "Abcdef12")
		require.NoError(t, err)
		t2, err := f.svc.Login(t.Context(), "a@x.com", "Abcdef12")
		require.NoError(t, err)

		_, err = f.svc.Authenticate(t.Context(), t1.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenRevoked)

		info, err := f.svc.Authenticate(t.Context(), t2.Value)
		require.NoError(t, err)
		assert.Equal(t, f.user.Info(), info)
		assert.Equal(t, 1, f.storage.activeSessions(f.user.ID))

		_, err = f.svc.Authenticate(t.Context(), "garbage")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)

		f.clock.t = f.clock.t.Add(24 * time.Hour)
		_, err = f.svc.Authenticate(t.Context(), t2.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("login returns 24h token", func(t *testing.T) {
		f := newFixture(t)

		token, err := f.svc.Login(t.Context(), "  A@X.com ", "Abcdef12")

		require.NoError(t, err)
		assert.Equal(t, f.clock.t.Add(24*time.Hour), token.ExpiresAt)
		session, ok := f.storage.sessions[token.Value]
		require.True(t, ok, "session must be persisted under the token")
		assert.Equal(t, f.user.ID, session.UserID)
		assert.False(t, session.Revoked)
		assert.Equal(t, token.ExpiresAt, session.ExpiresAt)
	})

	t.Run("login failures", func(t *testing.T) {
		tests := []struct {
			name     string
			email    string
			password string
			wantErr  error
		}{
			{"unknown email", "b@x.com", "Abcdef12", apperrors.ErrUserNotFound},
			{"wrong password", "a@x.com", "abcdef12", apperrors.ErrIncorrectPassword},
			{"empty password", "a@x.com", "", apperrors.ErrIncorrectPassword},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)

				_, err := f.svc.Login(t.Context(), tt.email, tt.password)

				require.ErrorIs(t, err, tt.wantErr)
				require.NotErrorIs(t, err, apperrors.ErrTokenGeneration)
				require.Empty(t, f.storage.sessions, "no session on rejected login")
			})
		}
	})

	t.Run("failed login keeps existing session", func(t *testing.T) {
		f := newFixture(t)
		token, err := f.svc.Login(t.Context(), "a@x.com", "Abcdef12")
		require.NoError(t, err)

		_, err = f.svc.Login(t.Context(), "a@x.com", "wrong")
		require.ErrorIs(t, err, apperrors.ErrIncorrectPassword)

		_, err = f.svc.Authenticate(t.Context(), token.Value)
		require.NoError(t, err)
	})

	t.Run("store failures become token generation errors", func(t *testing.T) {
		boom := errors.New("store is down")

		t.Run("revoke all fails", func(t *testing.T) {
			f := newFixture(t)
			f.storage.failRevokeAll = boom

			_, err := f.svc.Login(t.Context(), "a@x.com", "Abcdef12")

			require.ErrorIs(t, err, apperrors.ErrTokenGeneration)
			require.ErrorIs(t, err, boom)
		})

		t.Run("create fails", func(t *testing.T) {
			f := newFixture(t)
			f.storage.failCreate = boom

			_, err := f.svc.Login(t.Context(), "a@x.com", "Abcdef12")

			require.ErrorIs(t, err, apperrors.ErrTokenGeneration)
			require.ErrorIs(t, err, boom)
		})
	})

	t.Run("Authenticate precedence", func(t *testing.T) {
		t.Run("expired wins over revoked", func(t *testing.T) {
			f := newFixture(t)
			token, err := f.svc.Login(t.Context(), "a@x.com", "Abcdef12")
			require.NoError(t, err)
			_, err = f.svc.Logout(t.Context(), token.Value)
			require.NoError(t, err)
			f.clock.t = f.clock.t.Add(25 * time.Hour)

			_, err = f.svc.Authenticate(t.Context(), token.Value)

			require.ErrorIs(t, err, apperrors.ErrTokenExpired)
		})

		t.Run("unknown session", func(t *testing.T) {
			f := newFixture(t)
			token, err := f.svc.Login(t.Context(), "a@x.com", "Abcdef12")
			require.NoError(t, err)
			delete(f.storage.sessions, token.Value)

			_, err = f.svc.Authenticate(t.Context(), token.Value)

			require.ErrorIs(t, err, apperrors.ErrTokenNotFound)
		})

		t.Run("revoked wins over missing user", func(t *testing.T) {
			f := newFixture(t)
			token, err := f.svc.Login(t.Context(), "a@x.com", "Abcdef12")
			require.NoError(t, err)
			_, err = f.svc.Logout(t.Context(), token.Value)
			require.NoError(t, err)
			delete(f.storage.users, f.user.ID)

			_, err = f.svc.Authenticate(t.Context(), token.Value)

			require.ErrorIs(t, err, apperrors.ErrTokenRevoked)
		})

		t.Run("missing user", func(t *testing.T) {
			f := newFixture(t)
			token, err := f.svc.Login(t.Context(), "a@x.com", "Abcdef12")
			require.NoError(t, err)
			delete(f.storage.users, f.user.ID)

			_, err = f.svc.Authenticate(t.Context(), token.Value)

			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})

		t.Run("claims expiry is rechecked after lookup", func(t *testing.T) {
			f := newFixture(t)
			token, err := f.svc.Login(t.Context(), "a@x.com", "Abcdef12")
			require.NoError(t, err)
			stale := &staleTokens{tokenManager: f.svc.tokens}
			svc, err := NewService(Config{}, stale, f.storage)
			require.NoError(t, err)

			_, err = svc.Authenticate(t.Context(), token.Value)

			require.ErrorIs(t, err, apperrors.ErrTokenExpired)
		})
	})

	t.Run("logout", func(t *testing.T) {
		f := newFixture(t)
		token, err := f.svc.Login(t.Context(), "a@x.com", "Abcdef12")
		require.NoError(t, err)

		first, err := f.svc.Logout(t.Context(), token.Value)
		require.NoError(t, err)
		second, err := f.svc.Logout(t.Context(), token.Value)
		require.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)
		_, err = f.svc.Authenticate(t.Context(), token.Value)
		assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
	})

	t.Run("logout all", func(t *testing.T) {
		f := newFixture(t)
		token, err := f.svc.Login(t.Context(), "a@x.com", "Abcdef12")
		require.NoError(t, err)

		n, err := f.svc.LogoutAll(t.Context(), f.user.ID)
		require.NoError(t, err)
		again, err := f.svc.LogoutAll(t.Context(), f.user.ID)
		require.NoError(t, err)

		assert.EqualValues(t, 1, n)
		assert.Zero(t, again)
		_, err = f.svc.Authenticate(t.Context(), token.Value)
		assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
	})

	t.Run("observer sees outcomes", func(t *testing.T) {
		f := newFixture(t)

		token, err := f.svc.Login(t.Context(), "a@x.com", "Abcdef12")
		require.NoError(t, err)
		_, _ = f.svc.Login(t.Context(), "a@x.com", "nope")
		_, _ = f.svc.Authenticate(t.Context(), token.Value)
		_, _ = f.svc.Authenticate(t.Context(), "garbage")

		require.Len(t, f.observer.logins, 2)
		assert.NoError(t, f.observer.logins[0])
		assert.ErrorIs(t, f.observer.logins[1], apperrors.ErrIncorrectPassword)
		require.Len(t, f.observer.auths, 2)
		assert.NoError(t, f.observer.auths[0])
		assert.ErrorIs(t, f.observer.auths[1], apperrors.ErrInvalidToken)
	})
}

// staleTokens decodes fine but reports every claim set as expired.
type staleTokens struct {
	tokenManager
}

func (s *staleTokens) Expired(tokenmanager.Claims) bool { return true }
