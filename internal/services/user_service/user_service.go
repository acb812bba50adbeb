package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"imager/internal/domain/models"
	"imager/internal/lib/jwt"
	"imager/internal/lib/logger/sl"
	"imager/internal/lib/mailer"
	"imager/internal/repository"
	"imager/internal/storage"
	"imager/internal/transport/http/dto"

	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is not active")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrInvalidActivation  = errors.New("activation link is invalid or has expired")
	ErrUserNotFound       = errors.New("user not found")
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

type Config struct {
	BaseURL          string
	JWTSecret        string
	ActivationTTL    time.Duration
	ThrottleAttempts int
	ThrottleWindow   time.Duration
}

type UserService struct {
	log      *slog.Logger
	repo     repository.UserRepository
	tokens   repository.TokenRepository
	mail     mailer.Sender
	throttle *cache.Cache
	cfg      Config
	now      func() time.Time
}

func NewUserService(log *slog.Logger, repo repository.UserRepository, tokens repository.TokenRepository, mail mailer.Sender, cfg Config) *UserService {
	return &UserService{
		log:      log,
		repo:     repo,
		tokens:   tokens,
		mail:     mail,
		throttle: cache.New(cfg.ThrottleWindow, 2*cfg.ThrottleWindow),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Register creates an inactive account with its profile and mails a
// single-use activation link.
func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (int64, error) {
	const op = "user_service.Register"

	log := s.log.With(
		slog.String("op", op),
		slog.String("username", input.Username),
	)

	log.Info("register user")

	if !usernameRe.MatchString(input.Username) {
		ve := models.NewValidationError()
		ve.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		return 0, fmt.Errorf("%s: %w", op, ve)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(input.Password1), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	user := input.ToDomain(passHash)
	user.DateJoined = s.now().UTC()

	id, err := s.repo.CreateUserWithProfile(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			if id, ok := s.resendActivation(ctx, input); ok {
				log.Info("activation re-sent to pending user", slog.Int64("user_id", id))

				return id, nil
			}
			log.Warn("user already exists", sl.Err(err))

			ve := models.NewValidationError()
			ve.Add("username", "A user with that username already exists.")
			return 0, fmt.Errorf("%s: %w", op, ve)
		}
		log.Error("failed to save user", sl.Err(err))

		return 0, fmt.Errorf("%s: %w", op, err)
	}
	user.ID = id

	if err := s.sendActivation(ctx, user); err != nil {
		log.Error("failed to send activation email", sl.Err(err))

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Int64("user_id", id))

	return id, nil
}

// resendActivation mails a fresh link when a registration repeats the
// email and password of an account that was never activated.
func (s *UserService) resendActivation(ctx context.Context, input dto.RegisterInput) (int64, bool) {
	existing, err := s.repo.UserByUsername(ctx, input.Username)
	if err != nil || existing.IsActive {
		return 0, false
	}
	if !strings.EqualFold(existing.Email, input.Email) {
		return 0, false
	}
	if bcrypt.CompareHashAndPassword(existing.Password, []byte(input.Password1)) != nil {
		return 0, false
	}

	if err := s.sendActivation(ctx, existing); err != nil {
		s.log.Error("failed to re-send activation email", slog.Int64("user_id", existing.ID), sl.Err(err))
		return 0, false
	}
	return existing.ID, true
}

func (s *UserService) sendActivation(ctx context.Context, user models.User) error {
	token, err := jwt.NewActivationToken(user, s.cfg.ActivationTTL, s.cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("sign activation token: %w", err)
	}

	if err := s.tokens.SaveActivationToken(ctx, user.ID, token, s.cfg.ActivationTTL); err != nil {
		return fmt.Errorf("save activation token: %w", err)
	}

	link := strings.TrimRight(s.cfg.BaseURL, "/") + "/accounts/activate/" + token + "/"
	body := fmt.Sprintf(
		"Hi %s,\n\nPlease follow the link below to activate your Imager account:\n\n%s\n\nThe link expires in %s.\n",
		user.Username, link, s.cfg.ActivationTTL,
	)

	return s.mail.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Activate your Imager account",
		Body:    body,
	})
}

// Activate consumes an activation token and marks its user active.
func (s *UserService) Activate(ctx context.Context, token string) (models.User, error) {
	const op = "user_service.Activate"

	log := s.log.With(slog.String("op", op))

	userID, err := jwt.ParseActivationToken(token, s.cfg.JWTSecret)
	if err != nil {
		log.Info("rejected activation token", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidActivation)
	}

	ok, err := s.tokens.ConsumeActivationToken(ctx, userID, token)
	if err != nil {
		log.Error("failed to consume activation token", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		log.Info("activation token already used", slog.Int64("user_id", userID))

		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidActivation)
	}

	if err := s.repo.ActivateUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidActivation)
		}
		log.Error("failed to activate user", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user activated", slog.Int64("user_id", userID))

	return user, nil
}

// Login checks credentials. Repeated failures for one username within the
// throttle window lock it out without checking the password.
func (s *UserService) Login(ctx context.Context, username, password string) (models.User, error) {
	const op = "user_service.Login"

	log := s.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	log.Info("attempting to login user")

	key := strings.ToLower(username)
	if s.failures(key) >= s.cfg.ThrottleAttempts {
		log.Warn("login throttled")

		return models.User{}, fmt.Errorf("%s: %w", op, ErrTooManyAttempts)
	}

	user, err := s.repo.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))
			s.recordFailure(key)

			return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get user", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		s.recordFailure(key)

		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if !user.IsActive {
		log.Info("inactive user")

		return models.User{}, fmt.Errorf("%s: %w", op, ErrInactiveUser)
	}

	s.throttle.Delete(key)

	now := s.now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		log.Error("failed to update last login", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	user.LastLogin = &now

	log.Info("user logged in successfully")

	return user, nil
}

func (s *UserService) failures(key string) int {
	if n, ok := s.throttle.Get(key); ok {
		return n.(int)
	}
	return 0
}

func (s *UserService) recordFailure(key string) {
	if err := s.throttle.Add(key, 1, cache.DefaultExpiration); err != nil {
		_, _ = s.throttle.IncrementInt(key, 1)
	}
}

func (s *UserService) UserByID(ctx context.Context, id int64) (models.User, error) {
	const op = "user_service.UserByID"

	user, err := s.repo.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
