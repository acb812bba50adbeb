package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"imager/internal/domain/models"
	"imager/internal/lib/logger/sl"
	albums "imager/internal/services/gallery_service"
	library "imager/internal/services/library_service"
	profiles "imager/internal/services/profile_service"
	"imager/internal/storage"
	"imager/internal/transport/http/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	_ "imager/docs"
)

type UserService interface {
	Register(ctx context.Context, input dto.RegisterInput) (int64, error)
	Activate(ctx context.Context, token string) (models.User, error)
	Login(ctx context.Context, username, password string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
}

type TokenService interface {
	IssueToken(ctx context.Context, username, password string) (models.APIToken, error)
	UserFromClaims(ctx context.Context, claims jwt.MapClaims) (models.User, error)
}

type PhotoService interface {
	Create(ctx context.Context, owner models.User, input dto.PhotoInput) (models.Photo, error)
	Update(ctx context.Context, owner models.User, id int64, input dto.PhotoInput) (models.Photo, error)
	Owned(ctx context.Context, id, ownerID int64) (models.Photo, error)
	Visible(ctx context.Context, id int64, viewer *models.User) (models.Photo, error)
	Gallery(ctx context.Context) ([]models.Photo, error)
	OwnerPhotos(ctx context.Context, ownerID int64) ([]models.Photo, error)
	Hero(ctx context.Context) (models.Photo, bool, error)
}

type AlbumService interface {
	Create(ctx context.Context, owner models.User, req dto.AlbumInput) (models.Album, error)
	Update(ctx context.Context, owner models.User, id int64, req dto.AlbumInput) (models.Album, error)
	Owned(ctx context.Context, id, ownerID int64) (models.Album, error)
	Detail(ctx context.Context, id int64, viewer *models.User, rawPage string) (albums.AlbumDetail, error)
	Gallery(ctx context.Context) ([]models.Album, error)
}

type LibraryService interface {
	Library(ctx context.Context, ownerID int64, rawPhotoPage, rawAlbumPage string) (library.Library, error)
}

type ProfileService interface {
	Page(ctx context.Context, username string, viewer *models.User) (profiles.ProfilePage, error)
	EditForm(ctx context.Context, userID int64) (dto.ProfileInput, error)
	Update(ctx context.Context, userID int64, input dto.ProfileInput) error
	Directory(ctx context.Context) ([]models.Profile, error)
}

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

// Options carries presentation settings that are not owned by any service.
type Options struct {
	MediaBaseURL  string
	CoverURL      string
	CoverThumbURL string
	HeroURL       string
	HeroTitle     string
	SessionName   string
	SessionMaxAge int
	SessionSecure bool
	HealthChecks  map[string]HealthCheck
}

type Routers struct {
	log            *slog.Logger
	opts           Options
	UserService    UserService
	TokenService   TokenService
	PhotoService   PhotoService
	AlbumService   AlbumService
	LibraryService LibraryService
	ProfileService ProfileService
}

func NewRouter(
	log *slog.Logger,
	opts Options,
	userService UserService,
	tokenService TokenService,
	photoService PhotoService,
	albumService AlbumService,
	libraryService LibraryService,
	profileService ProfileService,
) *Routers {
	if opts.SessionName == "" {
		opts.SessionName = "session"
	}
	return &Routers{
		log:            log,
		opts:           opts,
		UserService:    userService,
		TokenService:   tokenService,
		PhotoService:   photoService,
		AlbumService:   albumService,
		LibraryService: libraryService,
		ProfileService: profileService,
	}
}

const (
	userKey        = "user"
	sessionUserKey = "user_id"
	defaultNext    = "/profile/"
)

// currentUser is the authenticated viewer, nil for anonymous requests.
func currentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

func (r *Routers) mediaURL(rel string) string {
	return strings.TrimRight(r.opts.MediaBaseURL, "/") + "/" + strings.TrimLeft(rel, "/")
}

// absoluteMediaURL prefixes relative media URLs with the request origin.
func (r *Routers) absoluteMediaURL(c echo.Context, rel string) string {
	u := r.mediaURL(rel)
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return c.Scheme() + "://" + c.Request().Host + u
}

// safeNext accepts only local absolute paths as a post-login target.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return defaultNext
	}
	if u, err := url.Parse(next); err != nil || u.Host != "" || u.Scheme != "" {
		return defaultNext
	}
	return next
}

func loginRedirect(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request().URL.RequestURI()))
}

func (r *Routers) startSession(c echo.Context, user models.User) error {
	sess, err := session.Get(r.opts.SessionName, c)
	if err != nil {
		return err
	}
	sess.Options.Path = "/"
	sess.Options.MaxAge = r.opts.SessionMaxAge
	sess.Options.HttpOnly = true
	sess.Options.Secure = r.opts.SessionSecure
	sess.Options.SameSite = http.SameSiteLaxMode
	sess.Values[sessionUserKey] = user.ID
	return sess.Save(c.Request(), c.Response())
}

func (r *Routers) endSession(c echo.Context) error {
	sess, err := session.Get(r.opts.SessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, sessionUserKey)
	sess.Options.Path = "/"
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// renderInvalid redisplays a form with the field errors carried by err.
// Anything but a validation failure goes to the error handler instead.
func renderInvalid(c echo.Context, name string, data echo.Map, err error) error {
	ve, ok := models.IsValidationError(err)
	if !ok {
		return err
	}
	data["Errors"] = ve.Fields
	return c.Render(http.StatusOK, name, data)
}

// notFound collapses missing and not-visible lookups into a 404.
func (r *Routers) notFound(log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, storage.ErrPhotoNotFound),
		errors.Is(err, storage.ErrAlbumNotFound),
		errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, profiles.ErrProfileNotFound):
		return echo.ErrNotFound
	}
	log.Error("request failed", sl.Err(err))
	return err
}

func pathID(c echo.Context) (int64, error) {
	id, ok := dto.ParseID(c.Param("id"))
	if !ok {
		return 0, echo.ErrNotFound
	}
	return id, nil
}
