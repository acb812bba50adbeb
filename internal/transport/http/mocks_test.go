package http

import (
	"context"
	"io"
	"log/slog"

	"imager/internal/domain/models"
	albums "imager/internal/services/gallery_service"
	library "imager/internal/services/library_service"
	profiles "imager/internal/services/profile_service"
	"imager/internal/transport/http/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, input dto.RegisterInput) (int64, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserService) Activate(ctx context.Context, token string) (models.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, username, password string) (models.User, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserService) UserByID(ctx context.Context, id int64) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) IssueToken(ctx context.Context, username, password string) (models.APIToken, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(models.APIToken), args.Error(1)
}

func (m *MockTokenService) UserFromClaims(ctx context.Context, claims jwt.MapClaims) (models.User, error) {
	args := m.Called(ctx, claims)
	return args.Get(0).(models.User), args.Error(1)
}

type MockPhotoService struct {
	mock.Mock
}

func (m *MockPhotoService) Create(ctx context.Context, owner models.User, input dto.PhotoInput) (models.Photo, error) {
	args := m.Called(ctx, owner, input)
	return args.Get(0).(models.Photo), args.Error(1)
}

func (m *MockPhotoService) Update(ctx context.Context, owner models.User, id int64, input dto.PhotoInput) (models.Photo, error) {
	args := m.Called(ctx, owner, id, input)
	return args.Get(0).(models.Photo), args.Error(1)
}

func (m *MockPhotoService) Owned(ctx context.Context, id, ownerID int64) (models.Photo, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(models.Photo), args.Error(1)
}

func (m *MockPhotoService) Visible(ctx context.Context, id int64, viewer *models.User) (models.Photo, error) {
	args := m.Called(ctx, id, viewer)
	return args.Get(0).(models.Photo), args.Error(1)
}

func (m *MockPhotoService) Gallery(ctx context.Context) ([]models.Photo, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Photo), args.Error(1)
}

func (m *MockPhotoService) OwnerPhotos(ctx context.Context, ownerID int64) ([]models.Photo, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]models.Photo), args.Error(1)
}

func (m *MockPhotoService) Hero(ctx context.Context) (models.Photo, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Photo), args.Bool(1), args.Error(2)
}

type MockAlbumService struct {
	mock.Mock
}

func (m *MockAlbumService) Create(ctx context.Context, owner models.User, req dto.AlbumInput) (models.Album, error) {
	args := m.Called(ctx, owner, req)
	return args.Get(0).(models.Album), args.Error(1)
}

func (m *MockAlbumService) Update(ctx context.Context, owner models.User, id int64, req dto.AlbumInput) (models.Album, error) {
	args := m.Called(ctx, owner, id, req)
	return args.Get(0).(models.Album), args.Error(1)
}

func (m *MockAlbumService) Owned(ctx context.Context, id, ownerID int64) (models.Album, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(models.Album), args.Error(1)
}

func (m *MockAlbumService) Detail(ctx context.Context, id int64, viewer *models.User, rawPage string) (albums.AlbumDetail, error) {
	args := m.Called(ctx, id, viewer, rawPage)
	return args.Get(0).(albums.AlbumDetail), args.Error(1)
}

func (m *MockAlbumService) Gallery(ctx context.Context) ([]models.Album, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Album), args.Error(1)
}

type MockLibraryService struct {
	mock.Mock
}

func (m *MockLibraryService) Library(ctx context.Context, ownerID int64, rawPhotoPage, rawAlbumPage string) (library.Library, error) {
	args := m.Called(ctx, ownerID, rawPhotoPage, rawAlbumPage)
	return args.Get(0).(library.Library), args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Page(ctx context.Context, username string, viewer *models.User) (profiles.ProfilePage, error) {
	args := m.Called(ctx, username, viewer)
	return args.Get(0).(profiles.ProfilePage), args.Error(1)
}

func (m *MockProfileService) EditForm(ctx context.Context, userID int64) (dto.ProfileInput, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(dto.ProfileInput), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, userID int64, input dto.ProfileInput) error {
	return m.Called(ctx, userID, input).Error(0)
}

func (m *MockProfileService) Directory(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Profile), args.Error(1)
}

// recordingRenderer captures the last page instead of executing templates.
type recordingRenderer struct {
	name string
	data echo.Map
}

func (r *recordingRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	r.name = name
	r.data, _ = data.(echo.Map)
	_, err := io.WriteString(w, name)
	return err
}

type mocks struct {
	users    *MockUserService
	tokens   *MockTokenService
	photos   *MockPhotoService
	albums   *MockAlbumService
	library  *MockLibraryService
	profiles *MockProfileService
}

func newTestRouters() (*Routers, *mocks) {
	m := &mocks{
		users:    new(MockUserService),
		tokens:   new(MockTokenService),
		photos:   new(MockPhotoService),
		albums:   new(MockAlbumService),
		library:  new(MockLibraryService),
		profiles: new(MockProfileService),
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRouter(log, Options{
		MediaBaseURL:  "/media",
		CoverURL:      "/static/default_cover.svg",
		CoverThumbURL: "/static/default_cover_thumb.svg",
		HeroURL:       "/static/hero.svg",
		HeroTitle:     "High-Five",
	}, m.users, m.tokens, m.photos, m.albums, m.library, m.profiles)

	return r, m
}
