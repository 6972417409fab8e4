package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dantegr/pickndeal-backend/internal/apperrors"
	"github.com/dantegr/pickndeal-backend/internal/models"
)

// UserRepository reads public profile fields from the externally owned
// users collection. Identity echo only, never writes.
type UserRepository interface {
	FindPublicByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type mongoUserRepository struct {
	col *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{col: db.Collection("users")}
}

func (r *mongoUserRepository) FindPublicByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	opts := options.FindOne().SetProjection(bson.M{"name": 1, "email": 1, "image": 1})
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", id.Hex(), apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}
