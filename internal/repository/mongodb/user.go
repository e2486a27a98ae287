package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fluyo/backend/internal/apperrors"
	"github.com/fluyo/backend/internal/models"
	"github.com/fluyo/backend/internal/repository"
)

type UserRepo struct {
	Coll *mongo.Collection
}

func (r *UserRepo) CreateUser(ctx context.Context, p repository.CreateUserParams) (models.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := userDoc{
		ID:        bson.NewObjectID(),
		Username:  p.Username,
		Email:     p.Email,
		Password:  p.HashedPassword,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		IsActive:  p.IsActive,
		CellPhone: p.CellPhone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.Coll.InsertOne(ctx, doc)
	switch {
	case err == nil:
		return doc.model(), nil
	case mongo.IsDuplicateKeyError(err):
		return models.User{}, fmt.Errorf("repo error: %w", apperrors.ErrEmailAlreadyExists)
	default:
		return models.User{}, fmt.Errorf("db error: %w", err)
	}
}

func (r *UserRepo) GetUserByID(ctx context.Context, id string) (models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, fmt.Errorf("repo error: %w", apperrors.ErrUserNotFound)
	}

	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepo) UpdateUser(ctx context.Context, id string, p repository.UpdateUserParams) (models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, fmt.Errorf("repo error: %w", apperrors.ErrUserNotFound)
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	for field, value := range map[string]*string{
		"username":   p.Username,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"cell_phone": p.CellPhone,
	} {
		if value != nil {
			set[field] = *value
		}
	}

	var doc userDoc
	err = r.Coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)

	return userResult(doc, err)
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var doc userDoc
	err := r.Coll.FindOne(ctx, filter).Decode(&doc)
	return userResult(doc, err)
}

func userResult(doc userDoc, err error) (models.User, error) {
	switch {
	case err == nil:
		return doc.model(), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.User{}, fmt.Errorf("repo error: %w", apperrors.ErrUserNotFound)
	default:
		return models.User{}, fmt.Errorf("db error: %w", err)
	}
}
