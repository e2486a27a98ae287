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
)

type CompanyRepo struct {
	Coll *mongo.Collection
}

func (r *CompanyRepo) Create(ctx context.Context, c models.Company) (models.Company, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	users := c.Users
	if users == nil {
		users = []string{}
	}

	doc := companyDoc{
		ID:          bson.NewObjectID(),
		Name:        c.Name,
		NIT:         c.NIT,
		Address:     c.Address,
		Phone:       c.Phone,
		Email:       c.Email,
		AdminUserID: c.AdminUserID,
		Users:       users,
		CreatedAt:   c.CreatedAt.UTC().Truncate(time.Millisecond),
	}

	_, err := r.Coll.InsertOne(ctx, doc)
	switch {
	case err == nil:
		return doc.model(), nil
	case mongo.IsDuplicateKeyError(err):
		return models.Company{}, fmt.Errorf("repo error: %w", apperrors.ErrCompanyAlreadyExists)
	default:
		return models.Company{}, fmt.Errorf("db error: %w", err)
	}
}

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (models.Company, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.Company{}, fmt.Errorf("repo error: %w", apperrors.ErrCompanyNotFound)
	}

	var doc companyDoc
	err = r.Coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)

	switch {
	case err == nil:
		return doc.model(), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.Company{}, fmt.Errorf("repo error: %w", apperrors.ErrCompanyNotFound)
	default:
		return models.Company{}, fmt.Errorf("db error: %w", err)
	}
}

func (r *CompanyRepo) ListByUser(ctx context.Context, userID string) ([]models.Company, error) {
	cur, err := r.Coll.Find(ctx,
		bson.M{"$or": bson.A{
			bson.M{"admin_user_id": userID},
			bson.M{"users": userID},
		}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var docs []companyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	companies := make([]models.Company, 0, len(docs))
	for _, d := range docs {
		companies = append(companies, d.model())
	}

	return companies, nil
}
