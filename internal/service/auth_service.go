package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leafscan"
	"leafscan/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Domain errors for auth flows.
var (
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("incorrect username/email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

const defaultTokenTTL = 30 * time.Minute

// AuthService handles user registration, login and token handling.
type AuthService struct {
	users      repository.Users
	signingKey []byte
	tokenTTL   time.Duration
}

func NewAuthService(users repository.Users, cfg AuthConfig) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{users: users, signingKey: cfg.SigningKey, tokenTTL: ttl}
}

// Register validates the input, rejects duplicates, stores the user with a
// hashed password and issues a token for the new account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*leafscan.User, string, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, "", err
	}

	// Friendly pre-checks; the unique indexes are the real gate, so a racing
	// duplicate still fails on insert and maps onto the same errors.
	if existing, err := s.users.GetByUsername(ctx, input.Username); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", ErrUsernameExists
	}
	if existing, err := s.users.GetByEmail(ctx, input.Email); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", ErrEmailExists
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, leafscan.User{
		Name:         input.Username,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, "", ErrUsernameExists
		}
		return nil, "", err
	}

	token, err := s.issueToken(user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login resolves the identifier as username or email and verifies the
// password. Lookup misses and bad passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*leafscan.User, string, error) {
	user, err := s.users.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return nil, "", err
	}
	if user == nil || verifyPassword(user.PasswordHash, password) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ParseToken verifies signature and expiry and returns the subject.
func (s *AuthService) ParseToken(accessToken string) (string, error) {
	token, err := jwt.ParseWithClaims(accessToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// UserBySubject looks up the account behind a verified token subject.
func (s *AuthService) UserBySubject(ctx context.Context, username string) (*leafscan.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// helper: issue a signed JWT with the username as subject
func (s *AuthService) issueToken(username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// helper: verify password against hash; a malformed hash fails verification
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
