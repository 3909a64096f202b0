package repository

import (
	"context"
	"errors"

	"leafscan"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicateUser is returned by Users.Create when the username or email
// collides with an existing account (unique index on both fields).
var ErrDuplicateUser = errors.New("username or email already exists")

type Users interface {
	Create(ctx context.Context, u leafscan.User) (*leafscan.User, error)
	GetByUsername(ctx context.Context, username string) (*leafscan.User, error)
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*leafscan.User, error)
	GetByEmail(ctx context.Context, email string) (*leafscan.User, error)
}

type Predictions interface {
	Insert(ctx context.Context, p leafscan.Prediction) (*leafscan.Prediction, error)
	ListByOwner(ctx context.Context, ownerID string, limit int64) ([]leafscan.Prediction, error)
	// DeleteByIDAndOwner removes and returns the record only when both id and
	// owner match. Returns (nil, nil) otherwise; callers cannot tell "missing"
	// from "not owned".
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (*leafscan.Prediction, error)
}

type Repository struct {
	Users       Users
	Predictions Predictions
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		Users:       NewUsersMongo(db),
		Predictions: NewPredictionsMongo(db),
	}
}
