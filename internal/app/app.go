package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	httpapp "imager/internal/app/http"
	"imager/internal/config"
	"imager/internal/lib/logger/sl"
	"imager/internal/lib/mailer"
	"imager/internal/repository"
	albums "imager/internal/services/gallery_service"
	library "imager/internal/services/library_service"
	photos "imager/internal/services/media_service"
	profiles "imager/internal/services/profile_service"
	tokens "imager/internal/services/token_service"
	users "imager/internal/services/user_service"
	filestorage "imager/internal/storage/filestorage"
	"imager/internal/storage/postgresql"
	redisapp "imager/internal/storage/redis"
	httprouters "imager/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server

	log     *slog.Logger
	storage *postgresql.Storage
	redis   *redisapp.Client
}

// New connects the backing stores, applies the schema and wires every
// service into the HTTP server. It panics when a dependency is unreachable.
func New(log *slog.Logger, cfg *config.Config) *App {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	storage, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		panic(err)
	}
	if err := storage.Migrate(ctx); err != nil {
		panic(err)
	}

	redisClient := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
	if err := redisClient.HealthCheck(ctx); err != nil {
		panic(fmt.Errorf("redis: %w", err))
	}

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL, cfg.FileStorage.MaxSize)
	if err != nil {
		panic(err)
	}

	repo := repository.NewRepository(storage.Pool())
	tokenRepo := repository.NewRedisTokenRepo(redisClient)

	mail, err := newMailer(log, cfg.Mail)
	if err != nil {
		panic(err)
	}

	userService := users.NewUserService(log, repo.User, tokenRepo, mail, users.Config{
		BaseURL:          cfg.HTTP.BaseURL,
		JWTSecret:        cfg.JWT.Secret,
		ActivationTTL:    cfg.ActivationTTL,
		ThrottleAttempts: cfg.LoginThrottle.Attempts,
		ThrottleWindow:   cfg.LoginThrottle.Window,
	})
	tokenService := tokens.NewTokenService(log, userService, repo.User, cfg.JWT.Secret, cfg.TokenTTL)
	photoService := photos.NewPhotoService(log, repo.Photo, fileStorage)
	albumService := albums.NewAlbumService(log, repo.Album, repo.Photo)
	libraryService := library.NewLibraryService(log, repo.Photo, repo.Album)
	profileService := profiles.NewProfileService(log, repo.User, repo.Profile, repo.Photo, repo.Album)

	routers := httprouters.NewRouter(log, httprouters.Options{
		MediaBaseURL:  cfg.FileStorage.BaseURL,
		CoverURL:      cfg.Defaults.CoverURL,
		CoverThumbURL: cfg.Defaults.CoverThumbURL,
		HeroURL:       cfg.Defaults.HeroURL,
		HeroTitle:     cfg.Defaults.HeroTitle,
		SessionName:   cfg.Session.Name,
		SessionMaxAge: cfg.Session.MaxAge,
		SessionSecure: cfg.Session.Secure,
		HealthChecks: map[string]httprouters.HealthCheck{
			"postgres": storage.Ping,
			"redis":    redisClient.HealthCheck,
		},
	}, userService, tokenService, photoService, albumService, libraryService, profileService)

	server, err := httpapp.New(log, cfg, routers)
	if err != nil {
		panic(err)
	}

	return &App{
		HTTPServer: server,
		log:        log,
		storage:    storage,
		redis:      redisClient,
	}
}

func newMailer(log *slog.Logger, cfg config.MailConfig) (mailer.Sender, error) {
	if cfg.Backend == "smtp" {
		return mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.From,
			Timeout:  cfg.SMTPTimeout,
		})
	}
	return mailer.NewConsoleSender(log, cfg.From), nil
}

// Stop shuts the HTTP server down first so in-flight requests can still
// reach the stores.
func (a *App) Stop() {
	if err := a.HTTPServer.Stop(); err != nil {
		a.log.Error("failed to stop http server", sl.Err(err))
	}
	if err := a.redis.Close(); err != nil {
		a.log.Error("failed to close redis", sl.Err(err))
	}
	a.storage.Stop()
}
