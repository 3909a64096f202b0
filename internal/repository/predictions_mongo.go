package repository

import (
	"context"
	"errors"
	"fmt"

	"leafscan"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const predictionsCollection = "predictions"

type PredictionsMongo struct {
	col *mongo.Collection
}

func NewPredictionsMongo(db *mongo.Database) *PredictionsMongo {
	return &PredictionsMongo{col: db.Collection(predictionsCollection)}
}

// Ensure implementation of Predictions interface at compile time.
var _ Predictions = (*PredictionsMongo)(nil)

// Insert stores a prediction record and returns it with the generated id.
func (r *PredictionsMongo) Insert(ctx context.Context, p leafscan.Prediction) (*leafscan.Prediction, error) {
	p.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return nil, fmt.Errorf("insert prediction for user %q: %w", p.UserID, err)
	}
	return &p, nil
}

// ListByOwner returns the owner's records in store order, capped at limit.
func (r *PredictionsMongo) ListByOwner(ctx context.Context, ownerID string, limit int64) ([]leafscan.Prediction, error) {
	cur, err := r.col.Find(ctx, bson.M{"user_id": ownerID}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list predictions for user %q: %w", ownerID, err)
	}
	out := []leafscan.Prediction{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode predictions for user %q: %w", ownerID, err)
	}
	return out, nil
}

// DeleteByIDAndOwner atomically removes and returns the matching record.
// An unparsable id behaves like a miss rather than an error.
func (r *PredictionsMongo) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (*leafscan.Prediction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var p leafscan.Prediction
	err = r.col.FindOneAndDelete(ctx, bson.M{"_id": oid, "user_id": ownerID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete prediction %q: %w", id, err)
	}
	return &p, nil
}
