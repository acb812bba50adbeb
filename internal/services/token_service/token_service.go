package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"imager/internal/domain/models"
	"imager/internal/lib/jwt"
	"imager/internal/lib/logger/sl"
	"imager/internal/repository"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Authenticator verifies a username and password pair.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (models.User, error)
}

// TokenService issues and resolves bearer tokens for the JSON API.
type TokenService struct {
	log    *slog.Logger
	auth   Authenticator
	users  repository.UserRepository
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(log *slog.Logger, auth Authenticator, users repository.UserRepository, secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		log:    log,
		auth:   auth,
		users:  users,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *TokenService) IssueToken(ctx context.Context, username, password string) (models.APIToken, error) {
	const op = "token_service.IssueToken"

	log := s.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	user, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return models.APIToken{}, fmt.Errorf("%s: %w", op, err)
	}

	token, err := jwt.NewToken(user, s.ttl, s.secret)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))

		return models.APIToken{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("api token issued")

	return models.APIToken{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   s.now().Add(s.ttl).Unix(),
	}, nil
}

// UserFromClaims resolves the claims of a verified bearer token to an
// active user.
func (s *TokenService) UserFromClaims(ctx context.Context, claims gojwt.MapClaims) (models.User, error) {
	const op = "token_service.UserFromClaims"

	id, err := jwt.AccessUserID(claims)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return user, nil
}
