package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/fluyo/backend/internal/apperrors"
	"github.com/fluyo/backend/internal/models"
)

type SessionRepo struct {
	Coll *mongo.Collection
}

func (r *SessionRepo) Create(ctx context.Context, s models.Session) (models.Session, error) {
	if s.ID == "" {
		s.ID = ulid.Make().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	doc := sessionDoc{
		ID:        s.ID,
		Token:     s.Token,
		UserID:    s.UserID,
		Revoked:   s.Revoked,
		RevokedAt: s.RevokedAt,
		CreatedAt: s.CreatedAt.UTC().Truncate(time.Millisecond),
		ExpiresAt: s.ExpiresAt.UTC().Truncate(time.Millisecond),
	}

	if _, err := r.Coll.InsertOne(ctx, doc); err != nil {
		return models.Session{}, fmt.Errorf("db error: %w", err)
	}

	return doc.model(), nil
}

// GetByToken returns the session even if it is revoked or expired
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (models.Session, error) {
	var doc sessionDoc
	err := r.Coll.FindOne(ctx, bson.M{"token": token}).Decode(&doc)

	switch {
	case err == nil:
		return doc.model(), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.Session{}, fmt.Errorf("repo error: %w", apperrors.ErrTokenNotFound)
	default:
		return models.Session{}, fmt.Errorf("db error: %w", err)
	}
}

func (r *SessionRepo) Revoke(ctx context.Context, token string) (bool, error) {
	res, err := r.Coll.UpdateOne(ctx,
		bson.M{"token": token, "revoked": false},
		revokeUpdate(),
	)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return res.ModifiedCount == 1, nil
}

func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.Coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "revoked": false},
		revokeUpdate(),
	)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return res.ModifiedCount, nil
}

func (r *SessionRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.Coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": before.UTC()}})
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return res.DeletedCount, nil
}

func revokeUpdate() bson.M {
	return bson.M{"$set": bson.M{"revoked": true, "revoked_at": time.Now().UTC()}}
}
