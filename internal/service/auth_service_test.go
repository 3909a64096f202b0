package service

import (
	"context"
	"testing"
	"time"

	"leafscan"
	"leafscan/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockUsersRepo is a lightweight in-test fake for repository.Users.
type mockUsersRepo struct {
	CreateFn               func(ctx context.Context, u leafscan.User) (*leafscan.User, error)
	GetByUsernameFn        func(ctx context.Context, username string) (*leafscan.User, error)
	GetByEmailFn           func(ctx context.Context, email string) (*leafscan.User, error)
	GetByUsernameOrEmailFn func(ctx context.Context, identifier string) (*leafscan.User, error)

	createCalls []leafscan.User
}

func (m *mockUsersRepo) Create(ctx context.Context, u leafscan.User) (*leafscan.User, error) {
	m.createCalls = append(m.createCalls, u)
	if m.CreateFn == nil {
		created := u
		created.ID = primitive.NewObjectID()
		return &created, nil
	}
	return m.CreateFn(ctx, u)
}

func (m *mockUsersRepo) GetByUsername(ctx context.Context, username string) (*leafscan.User, error) {
	if m.GetByUsernameFn == nil {
		return nil, nil
	}
	return m.GetByUsernameFn(ctx, username)
}

func (m *mockUsersRepo) GetByEmail(ctx context.Context, email string) (*leafscan.User, error) {
	if m.GetByEmailFn == nil {
		return nil, nil
	}
	return m.GetByEmailFn(ctx, email)
}

func (m *mockUsersRepo) GetByUsernameOrEmail(ctx context.Context, identifier string) (*leafscan.User, error) {
	if m.GetByUsernameOrEmailFn == nil {
		return nil, nil
	}
	return m.GetByUsernameOrEmailFn(ctx, identifier)
}

func newTestAuthService(users repository.Users) *AuthService {
	return NewAuthService(users, AuthConfig{SigningKey: []byte("test-signing-key"), TokenTTL: time.Hour})
}

var validInput = RegisterInput{
	Username:             "alice",
	Email:                "a@x.com",
	Password:             "Passw0rd",
	PasswordConfirmation: "Passw0rd",
}

func TestRegister_HashesPasswordAndIssuesToken(t *testing.T) {
	repo := &mockUsersRepo{}
	svc := newTestAuthService(repo)

	user, token, err := svc.Register(context.Background(), validInput)
	require.NoError(t, err)
	require.NotNil(t, user)

	require.Len(t, repo.createCalls, 1)
	stored := repo.createCalls[0]
	assert.Equal(t, "alice", stored.Username)
	assert.Equal(t, "alice", stored.Name, "display name defaults to username")
	assert.NotEqual(t, "Passw0rd", stored.PasswordHash, "password must not be stored in plaintext")
	assert.NoError(t, verifyPassword(stored.PasswordHash, "Passw0rd"))

	subject, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	existing := &leafscan.User{Username: "alice"}
	repo := &mockUsersRepo{
		GetByUsernameFn: func(ctx context.Context, username string) (*leafscan.User, error) {
			return existing, nil
		},
	}
	svc := newTestAuthService(repo)

	_, _, err := svc.Register(context.Background(), validInput)
	assert.ErrorIs(t, err, ErrUsernameExists)
	assert.Empty(t, repo.createCalls)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &mockUsersRepo{
		GetByEmailFn: func(ctx context.Context, email string) (*leafscan.User, error) {
			return &leafscan.User{Email: email}, nil
		},
	}
	svc := newTestAuthService(repo)

	_, _, err := svc.Register(context.Background(), validInput)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegister_RaceLoserMapsToDuplicate(t *testing.T) {
	// Pre-checks pass but the unique index rejects the insert.
	repo := &mockUsersRepo{
		CreateFn: func(ctx context.Context, u leafscan.User) (*leafscan.User, error) {
			return nil, repository.ErrDuplicateUser
		},
	}
	svc := newTestAuthService(repo)

	_, _, err := svc.Register(context.Background(), validInput)
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestRegister_Validation(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(in *RegisterInput)
		wantField string
	}{
		{"username too short", func(in *RegisterInput) { in.Username = "ab" }, "username"},
		{"username bad characters", func(in *RegisterInput) { in.Username = "alice!" }, "username"},
		{"invalid email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"password too short", func(in *RegisterInput) { in.Password = "Pw0"; in.PasswordConfirmation = "Pw0" }, "password"},
		{"password without uppercase", func(in *RegisterInput) { in.Password = "passw0rd"; in.PasswordConfirmation = "passw0rd" }, "password"},
		{"password without lowercase", func(in *RegisterInput) { in.Password = "PASSW0RD"; in.PasswordConfirmation = "PASSW0RD" }, "password"},
		{"password without digit", func(in *RegisterInput) { in.Password = "Password"; in.PasswordConfirmation = "Password" }, "password"},
		{"confirmation mismatch", func(in *RegisterInput) { in.PasswordConfirmation = "Different1" }, "password_confirmation"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockUsersRepo{}
			svc := newTestAuthService(repo)

			input := validInput
			tc.mutate(&input)

			_, _, err := svc.Register(context.Background(), input)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.wantField, vErr.Field)
			assert.Empty(t, repo.createCalls, "invalid input must not reach the store")
		})
	}
}

func TestLogin_Success(t *testing.T) {
	hash, err := hashPassword("letmein1A")
	require.NoError(t, err)
	stored := &leafscan.User{ID: primitive.NewObjectID(), Username: "diana", Email: "d@x.com", PasswordHash: hash}

	repo := &mockUsersRepo{
		GetByUsernameOrEmailFn: func(ctx context.Context, identifier string) (*leafscan.User, error) {
			assert.Equal(t, "d@x.com", identifier)
			return stored, nil
		},
	}
	svc := newTestAuthService(repo)

	user, token, err := svc.Login(context.Background(), "d@x.com", "letmein1A")
	require.NoError(t, err)
	assert.Equal(t, "diana", user.Username)

	subject, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "diana", subject)
}

func TestLogin_BadPasswordAndUnknownUserLookAlike(t *testing.T) {
	hash, err := hashPassword("letmein1A")
	require.NoError(t, err)

	repo := &mockUsersRepo{
		GetByUsernameOrEmailFn: func(ctx context.Context, identifier string) (*leafscan.User, error) {
			if identifier == "diana" {
				return &leafscan.User{Username: "diana", PasswordHash: hash}, nil
			}
			return nil, nil
		},
	}
	svc := newTestAuthService(repo)

	_, _, badPass := svc.Login(context.Background(), "diana", "wrong")
	_, _, unknown := svc.Login(context.Background(), "nobody", "letmein1A")

	assert.ErrorIs(t, badPass, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, badPass.Error(), unknown.Error())
}

func TestLogin_MalformedStoredHashFailsVerification(t *testing.T) {
	repo := &mockUsersRepo{
		GetByUsernameOrEmailFn: func(ctx context.Context, identifier string) (*leafscan.User, error) {
			return &leafscan.User{Username: "diana", PasswordHash: "not-a-bcrypt-hash"}, nil
		},
	}
	svc := newTestAuthService(repo)

	_, _, err := svc.Login(context.Background(), "diana", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseToken_Expired(t *testing.T) {
	svc := newTestAuthService(&mockUsersRepo{})
	svc.tokenTTL = -time.Minute // the constructor rejects non-positive TTLs

	token, err := svc.issueToken("alice")
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_WrongKey(t *testing.T) {
	issuer := newTestAuthService(&mockUsersRepo{})
	verifier := NewAuthService(&mockUsersRepo{}, AuthConfig{SigningKey: []byte("other-key"), TokenTTL: time.Hour})

	token, err := issuer.issueToken("alice")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	svc := newTestAuthService(&mockUsersRepo{})

	_, err := svc.ParseToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
