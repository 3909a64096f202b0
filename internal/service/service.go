package service

import (
	"context"
	"time"

	"leafscan"
	"leafscan/internal/classifier"
	"leafscan/internal/repository"
)

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
}

// Authorization covers registration, login and bearer-token handling.
type Authorization interface {
	Register(ctx context.Context, input RegisterInput) (*leafscan.User, string, error)
	Login(ctx context.Context, identifier, password string) (*leafscan.User, string, error)
	// ParseToken verifies a bearer token and returns its subject (username).
	ParseToken(accessToken string) (string, error)
	// UserBySubject resolves a verified token subject to the current account.
	// Returns (nil, nil) when the account no longer exists.
	UserBySubject(ctx context.Context, username string) (*leafscan.User, error)
}

// Predictions covers classification and the owner-scoped record lifecycle.
type Predictions interface {
	Classify(ctx context.Context, image []byte) (string, error)
	ClassifyAndStore(ctx context.Context, owner *leafscan.User, filename, contentType string, image []byte) (*leafscan.Prediction, error)
	History(ctx context.Context, ownerID string) ([]leafscan.Prediction, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// ImageStore persists uploaded images and resolves them back from their
// public URLs. Implemented by storage.ImageStore.
type ImageStore interface {
	Save(filename string, data []byte) (string, error)
	Remove(url string) error
}

// AuthConfig carries the token-signing material from configuration.
type AuthConfig struct {
	SigningKey []byte
	TokenTTL   time.Duration
}

// Service aggregates all sub-services behind their interfaces.
type Service struct {
	Authorization
	Predictions
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, images ImageStore, clf classifier.Classifier, authCfg AuthConfig) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Users, authCfg),
		Predictions:   NewPredictionService(repos.Predictions, images, clf),
	}
}
