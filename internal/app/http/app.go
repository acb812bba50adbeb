package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"imager/internal/config"
	prommw "imager/internal/middleware"
	httprouters "imager/internal/transport/http"

	"github.com/arl/statsviz"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const envProd = "prod"

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	cfg     *config.Config
}

func New(log *slog.Logger, cfg *config.Config, routers *httprouters.Routers) (*Server, error) {
	const op = "httpapp.New"

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.HTTP.ReadTimeout
	e.Server.WriteTimeout = cfg.HTTP.WriteTimeout

	renderer, err := httprouters.NewRenderer(cfg.FileStorage.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	e.Renderer = renderer
	e.Validator = httprouters.NewValidator()
	e.HTTPErrorHandler = routers.HTTPErrorHandler

	e.Use(middleware.Recover())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogMethod:   true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	e.Use(prommw.PrometheusMetrics)
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", cfg.FileStorage.MaxSize/1024+1024)))

	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))
	e.Use(routers.LoadUser)

	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper:        skipCSRF,
		TokenLookup:    "form:csrf_token",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.Session.Secure,
		CookieSameSite: http.SameSiteLaxMode,
	}))

	mux := http.NewServeMux()
	if cfg.Env != envProd {
		if err := statsviz.Register(mux); err != nil {
			log.Info("Statsviz start with error", slog.Any("error:", err.Error()))
		}
	}

	return &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		cfg:     cfg,
	}, nil
}

// skipCSRF exempts the bearer-token API and machine endpoints.
func skipCSRF(c echo.Context) bool {
	p := c.Request().URL.Path
	for _, prefix := range []string{"/api/", "/metrics", "/health", "/debug/", "/swagger/", "/static/"} {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"), slog.String("addr", s.addr()))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) addr() string {
	return fmt.Sprintf("%s:%s", s.cfg.HTTP.Host, s.cfg.HTTP.Port)
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr()); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	r := s.routers
	login := r.RequireLogin

	s.e.GET("/", r.Home)
	s.e.GET("/health", r.Health)
	s.e.GET("/photographers", r.Photographers)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.e.StaticFS("/static", httprouters.StaticFS())
	if strings.HasPrefix(s.cfg.FileStorage.BaseURL, "/") {
		s.e.Static(s.cfg.FileStorage.BaseURL, s.cfg.FileStorage.BaseDir)
	}

	s.e.GET("/login", r.LoginPage)
	s.e.POST("/login", r.Login)
	s.e.GET("/logout", r.Logout)

	accounts := s.e.Group("/accounts")
	{
		accounts.GET("/register/", r.RegisterPage)
		accounts.POST("/register/", r.Register)
		accounts.GET("/register/complete/", r.RegisterComplete)
		accounts.GET("/activate/:token/", r.Activate)
	}

	profile := s.e.Group("/profile")
	{
		profile.GET("/", r.Profile)
		profile.GET("/edit", r.ProfileEditPage, login)
		profile.POST("/edit", r.ProfileEdit, login)
		profile.GET("/:username", r.Profile)
		profile.GET("/:username/", r.Profile)
	}

	images := s.e.Group("/images")
	{
		images.GET("/library", r.Library, login)

		images.GET("/photos", r.PhotoGallery)
		images.GET("/photos/add", r.PhotoAddPage, login)
		images.POST("/photos/add", r.PhotoAdd, login)
		images.GET("/photos/:id", r.PhotoDetail)
		images.GET("/photos/:id/edit", r.PhotoEditPage, login)
		images.POST("/photos/:id/edit", r.PhotoEdit, login)

		images.GET("/albums", r.AlbumGallery)
		images.GET("/albums/add", r.AlbumAddPage, login)
		images.POST("/albums/add", r.AlbumAdd, login)
		images.GET("/albums/:id", r.AlbumDetail)
		images.GET("/albums/:id/edit", r.AlbumEditPage, login)
		images.POST("/albums/:id/edit", r.AlbumEdit, login)
	}

	api := s.e.Group("/api/v1")
	{
		api.POST("/token", r.Token)

		photos := api.Group("/photos", r.APIAuth(s.cfg.JWT.Secret), r.RequireAPIUser)
		{
			photos.GET("", r.ListPhotos)
			photos.GET("/", r.ListPhotos)
		}
	}

	if s.cfg.Env != envProd {
		debug := s.e.Group("/debug")
		{
			debug.GET("/statsviz/", echo.WrapHandler(s.m))
			debug.GET("/statsviz/*", echo.WrapHandler(s.m))
		}
	}

	s.e.GET("/swagger/*", echoSwagger.WrapHandler)
}
