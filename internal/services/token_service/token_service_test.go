package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"imager/internal/domain/models"
	"imager/internal/lib/jwt"
	"imager/internal/storage"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, username, password string) (models.User, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(models.User), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUserWithProfile(ctx context.Context, user models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) UserByID(ctx context.Context, id int64) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserRepository) UserByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserRepository) ActivateUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

var (
	testUser = models.User{ID: 42, Username: "alice", IsActive: true}
	testCtx  = context.Background()
)

func newTestService() (*TokenService, *MockAuthenticator, *MockUserRepository) {
	auth, users := new(MockAuthenticator), new(MockUserRepository)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTokenService(log, auth, users, testSecret, time.Hour), auth, users
}

func claimsOf(t *testing.T, token string) gojwt.MapClaims {
	t.Helper()

	claims := gojwt.MapClaims{}
	_, err := gojwt.ParseWithClaims(token, claims, func(*gojwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	return claims
}

func TestIssueToken_Success(t *testing.T) {
	service, auth, _ := newTestService()

	auth.On("Login", testCtx, "alice", "password123").Return(testUser, nil).Once()

	token, err := service.IssueToken(testCtx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Greater(t, token.ExpiresAt, time.Now().Unix())

	claims := claimsOf(t, token.AccessToken)
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, jwt.PurposeAccess, claims["purpose"])
	auth.AssertExpectations(t)
}

func TestIssueToken_BadCredentials(t *testing.T) {
	service, auth, _ := newTestService()

	loginErr := errors.New("invalid credentials")
	auth.On("Login", testCtx, "alice", "nope").Return(models.User{}, loginErr).Once()

	_, err := service.IssueToken(testCtx, "alice", "nope")
	assert.ErrorIs(t, err, loginErr)
}

func TestUserFromClaims(t *testing.T) {
	tests := []struct {
		name    string
		token   func() (string, error)
		setup   func(users *MockUserRepository)
		wantErr error
	}{
		{
			name:  "valid access token",
			token: func() (string, error) { return jwt.NewToken(testUser, time.Hour, testSecret) },
			setup: func(users *MockUserRepository) {
				users.On("UserByID", testCtx, int64(42)).Return(testUser, nil).Once()
			},
		},
		{
			name:    "activation token rejected",
			token:   func() (string, error) { return jwt.NewActivationToken(testUser, time.Hour, testSecret) },
			setup:   func(*MockUserRepository) {},
			wantErr: ErrInvalidToken,
		},
		{
			name:  "inactive user rejected",
			token: func() (string, error) { return jwt.NewToken(testUser, time.Hour, testSecret) },
			setup: func(users *MockUserRepository) {
				users.On("UserByID", testCtx, int64(42)).Return(models.User{ID: 42}, nil).Once()
			},
			wantErr: ErrInvalidToken,
		},
		{
			name:  "deleted user",
			token: func() (string, error) { return jwt.NewToken(testUser, time.Hour, testSecret) },
			setup: func(users *MockUserRepository) {
				users.On("UserByID", testCtx, int64(42)).Return(models.User{}, storage.ErrUserNotFound).Once()
			},
			wantErr: storage.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, users := newTestService()
			tt.setup(users)

			token, err := tt.token()
			require.NoError(t, err)

			user, err := service.UserFromClaims(testCtx, claimsOf(t, token))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testUser.ID, user.ID)
			users.AssertExpectations(t)
		})
	}
}
