package repository

import (
	"context"
	"errors"
	"fmt"

	"leafscan"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const usersCollection = "users"

type UsersMongo struct {
	col *mongo.Collection
}

func NewUsersMongo(db *mongo.Database) *UsersMongo {
	return &UsersMongo{col: db.Collection(usersCollection)}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UsersMongo)(nil)

// Create inserts a new user and returns it with the generated id.
func (r *UsersMongo) Create(ctx context.Context, u leafscan.User) (*leafscan.User, error) {
	u.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	return &u, nil
}

// GetByUsername fetches a user by username. Returns (nil, nil) if not found.
func (r *UsersMongo) GetByUsername(ctx context.Context, username string) (*leafscan.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UsersMongo) GetByEmail(ctx context.Context, email string) (*leafscan.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByUsernameOrEmail resolves a login identifier that may be either field.
func (r *UsersMongo) GetByUsernameOrEmail(ctx context.Context, identifier string) (*leafscan.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}})
}

func (r *UsersMongo) findOne(ctx context.Context, filter bson.M) (*leafscan.User, error) {
	var u leafscan.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}
