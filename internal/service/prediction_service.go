package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leafscan"
	"leafscan/internal/classifier"
	"leafscan/internal/repository"
)

// ErrPredictionNotFound covers both "no such record" and "not yours";
// callers must not be able to tell them apart.
var ErrPredictionNotFound = errors.New("prediction not found")

// historyLimit caps how many records a history call returns.
const historyLimit = 100

// PredictionService orchestrates the classifier, the image store and the
// prediction records.
type PredictionService struct {
	predictions repository.Predictions
	images      ImageStore
	clf         classifier.Classifier
}

func NewPredictionService(predictions repository.Predictions, images ImageStore, clf classifier.Classifier) *PredictionService {
	return &PredictionService{predictions: predictions, images: images, clf: clf}
}

// Classify labels image bytes without persisting anything.
func (s *PredictionService) Classify(ctx context.Context, image []byte) (string, error) {
	return s.clf.Classify(ctx, image)
}

// ClassifyAndStore classifies the image, persists it under a unique name and
// records the result owned by the caller. The image write and the record
// insert are separate steps; a failed insert leaves the file behind.
func (s *PredictionService) ClassifyAndStore(ctx context.Context, owner *leafscan.User, filename, contentType string, image []byte) (*leafscan.Prediction, error) {
	disease, err := s.clf.Classify(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("classify image: %w", err)
	}

	imageURL, err := s.images.Save(filename, image)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	return s.predictions.Insert(ctx, leafscan.Prediction{
		Filename:    filename,
		ContentType: contentType,
		Disease:     disease,
		UserID:      owner.ID.Hex(),
		ImageURL:    imageURL,
		CreatedAt:   time.Now().UTC(),
	})
}

// History lists the owner's records, capped at historyLimit.
func (s *PredictionService) History(ctx context.Context, ownerID string) ([]leafscan.Prediction, error) {
	return s.predictions.ListByOwner(ctx, ownerID, historyLimit)
}

// Delete removes the record if the caller owns it, then the backing image.
func (s *PredictionService) Delete(ctx context.Context, id, ownerID string) error {
	deleted, err := s.predictions.DeleteByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if deleted == nil {
		return ErrPredictionNotFound
	}
	if err := s.images.Remove(deleted.ImageURL); err != nil {
		return fmt.Errorf("remove stored image: %w", err)
	}
	return nil
}
