package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fluyo/backend/internal/repository"
)

type Storage struct {
	db *mongo.Database
}

func NewStorage(db *mongo.Database) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{Coll: s.db.Collection(usersCollection)}
}

func (s *Storage) Session() repository.SessionRepo {
	return &SessionRepo{Coll: s.db.Collection(sessionsCollection)}
}

func (s *Storage) Company() repository.CompanyRepo {
	return &CompanyRepo{Coll: s.db.Collection(companiesCollection)}
}

// InTx runs fn directly: standalone servers have no multi-document transactions,
// so steps inside fn are applied one by one and are not rolled back on error.
func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) error {
	return fn(s)
}

// EnsureIndexes creates the indexes the repositories rely on. Safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		sessionsCollection: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "revoked", Value: 1}}},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		},
		companiesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}, {Key: "admin_user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "users", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}

	return nil
}
