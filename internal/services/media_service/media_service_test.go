package services_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"imager/internal/domain/models"
	"imager/internal/repository"
	services "imager/internal/services/media_service"
	"imager/internal/storage"
	"imager/internal/transport/http/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPhotoRepository struct {
	mock.Mock
}

func (m *MockPhotoRepository) CreatePhoto(ctx context.Context, photo models.Photo) (int64, error) {
	args := m.Called(ctx, photo)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPhotoRepository) UpdatePhoto(ctx context.Context, photo models.Photo) error {
	args := m.Called(ctx, photo)
	return args.Error(0)
}

func (m *MockPhotoRepository) PhotoByID(ctx context.Context, id int64) (models.Photo, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Photo), args.Error(1)
}

func (m *MockPhotoRepository) OwnedPhoto(ctx context.Context, id, ownerID int64) (models.Photo, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(models.Photo), args.Error(1)
}

func (m *MockPhotoRepository) ListPhotos(ctx context.Context, f repository.PhotoFilter) ([]models.Photo, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.Photo), args.Error(1)
}

func (m *MockPhotoRepository) CountPhotos(ctx context.Context, f repository.PhotoFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *MockPhotoRepository) RandomPublicPhoto(ctx context.Context) (models.Photo, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Photo), args.Error(1)
}

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) GetBaseDir() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockFileStorage) Save(ctx context.Context, file *multipart.FileHeader, subPath string) (string, int64, error) {
	args := m.Called(ctx, file, subPath)
	return args.String(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockFileStorage) Delete(ctx context.Context, filePath string) error {
	args := m.Called(ctx, filePath)
	return args.Error(0)
}

func (m *MockFileStorage) ValidateImage(file *multipart.FileHeader) (string, error) {
	args := m.Called(file)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) GetFullPath(relativePath string) string {
	args := m.Called(relativePath)
	return args.String(0)
}

func (m *MockFileStorage) URL(relativePath string) string {
	args := m.Called(relativePath)
	return args.String(0)
}

func createTestFile(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)

	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	err = writer.Close()
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	file, header, err := req.FormFile("image")
	require.NoError(t, err)
	file.Close()

	return header
}

func setup() (*services.PhotoService, *MockPhotoRepository, *MockFileStorage) {
	repo, files := new(MockPhotoRepository), new(MockFileStorage)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return services.NewPhotoService(log, repo, files), repo, files
}

var owner = models.User{ID: 1, Username: "alice"}

func TestPhotoService_Create(t *testing.T) {
	ctx := context.Background()
	image := createTestFile(t, "sunset.png", "png bytes")

	t.Run("private photo has no publish date", func(t *testing.T) {
		service, repo, files := setup()

		files.On("ValidateImage", image).Return("png", nil).Once()
		files.On("Save", ctx, image, "images").Return("images/abc.png", int64(9), nil).Once()
		repo.On("CreatePhoto", ctx, mock.MatchedBy(func(p models.Photo) bool {
			return p.OwnerID == 1 && p.DatePublished == nil && p.Title == models.DefaultTitle &&
				p.DateUploaded.Equal(p.DateModified)
		})).Return(int64(10), nil).Once()

		photo, err := service.Create(ctx, owner, dto.PhotoInput{
			Title:      "  ",
			Visibility: "PRIVATE",
			Image:      image,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(10), photo.ID)
		assert.Equal(t, "images/abc.png", photo.Image)
		assert.Nil(t, photo.DatePublished)
		repo.AssertExpectations(t)
	})

	t.Run("public photo is stamped", func(t *testing.T) {
		service, repo, files := setup()

		files.On("ValidateImage", image).Return("png", nil).Once()
		files.On("Save", ctx, image, "images").Return("images/def.png", int64(9), nil).Once()
		repo.On("CreatePhoto", ctx, mock.Anything).Return(int64(11), nil).Once()

		photo, err := service.Create(ctx, owner, dto.PhotoInput{
			Title:       "Sunset",
			Description: `<script>alert(1)</script>nice`,
			Visibility:  "PUBLIC",
			Image:       image,
		})
		require.NoError(t, err)
		require.NotNil(t, photo.DatePublished)
		assert.Equal(t, "nice", photo.Description)
	})

	t.Run("validation errors", func(t *testing.T) {
		service, repo, files := setup()

		_, err := service.Create(ctx, owner, dto.PhotoInput{
			Title:      strings.Repeat("x", 181),
			Visibility: "FRIENDS",
		})
		ve, ok := models.IsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields, "title")
		assert.Contains(t, ve.Fields, "published")
		assert.Contains(t, ve.Fields, "image")
		repo.AssertNotCalled(t, "CreatePhoto", mock.Anything, mock.Anything)
		files.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not an image", func(t *testing.T) {
		service, _, files := setup()

		files.On("ValidateImage", image).Return("", storage.ErrInvalidFileType).Once()

		_, err := service.Create(ctx, owner, dto.PhotoInput{Visibility: "PUBLIC", Image: image})
		ve, ok := models.IsValidationError(err)
		require.True(t, ok)
		assert.Contains(t, ve.Fields["image"], "Upload a valid image")
	})

	t.Run("database error removes the stored file", func(t *testing.T) {
		service, repo, files := setup()

		files.On("ValidateImage", image).Return("png", nil).Once()
		files.On("Save", ctx, image, "images").Return("images/ghi.png", int64(9), nil).Once()
		repo.On("CreatePhoto", ctx, mock.Anything).Return(int64(0), errors.New("db down")).Once()
		files.On("Delete", ctx, "images/ghi.png").Return(nil).Once()

		_, err := service.Create(ctx, owner, dto.PhotoInput{Visibility: "PUBLIC", Image: image})
		assert.ErrorContains(t, err, "db down")
		files.AssertExpectations(t)
	})
}

func TestPhotoService_Update(t *testing.T) {
	ctx := context.Background()
	uploaded := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	stored := models.Photo{
		ID:           5,
		OwnerID:      1,
		Image:        "images/old.png",
		Title:        "Old",
		DateUploaded: uploaded,
		DateModified: uploaded,
		Visibility:   models.VisibilityPrivate,
	}

	t.Run("private to public sets publish date once", func(t *testing.T) {
		service, repo, _ := setup()

		repo.On("OwnedPhoto", ctx, int64(5), int64(1)).Return(stored, nil).Once()
		repo.On("UpdatePhoto", ctx, mock.Anything).Return(nil).Once()

		photo, err := service.Update(ctx, owner, 5, dto.PhotoInput{Title: "New", Visibility: "PUBLIC"})
		require.NoError(t, err)
		require.NotNil(t, photo.DatePublished)
		assert.Equal(t, "images/old.png", photo.Image)
		assert.Equal(t, uploaded, photo.DateUploaded)
		assert.True(t, photo.DateModified.After(uploaded))

		first := *photo.DatePublished

		repo.On("OwnedPhoto", ctx, int64(5), int64(1)).Return(photo, nil).Once()
		repo.On("UpdatePhoto", ctx, mock.Anything).Return(nil).Once()

		again, err := service.Update(ctx, owner, 5, dto.PhotoInput{Title: "New", Visibility: "PUBLIC"})
		require.NoError(t, err)
		assert.Equal(t, first, *again.DatePublished)
	})

	t.Run("going private keeps publish date", func(t *testing.T) {
		service, repo, _ := setup()

		published := uploaded.Add(time.Hour)
		public := stored
		public.Visibility = models.VisibilityPublic
		public.DatePublished = &published

		repo.On("OwnedPhoto", ctx, int64(5), int64(1)).Return(public, nil).Once()
		repo.On("UpdatePhoto", ctx, mock.Anything).Return(nil).Once()

		photo, err := service.Update(ctx, owner, 5, dto.PhotoInput{Visibility: "PRIVATE"})
		require.NoError(t, err)
		require.NotNil(t, photo.DatePublished)
		assert.Equal(t, published, *photo.DatePublished)
	})

	t.Run("foreign photo is not found", func(t *testing.T) {
		service, repo, _ := setup()

		repo.On("OwnedPhoto", ctx, int64(5), int64(2)).Return(models.Photo{}, storage.ErrPhotoNotFound).Once()

		_, err := service.Update(ctx, models.User{ID: 2, Username: "bob"}, 5, dto.PhotoInput{Visibility: "PUBLIC"})
		assert.ErrorIs(t, err, storage.ErrPhotoNotFound)
	})

	t.Run("replacing the image deletes the old file", func(t *testing.T) {
		service, repo, files := setup()
		image := createTestFile(t, "new.jpg", "jpeg bytes")

		repo.On("OwnedPhoto", ctx, int64(5), int64(1)).Return(stored, nil).Once()
		files.On("ValidateImage", image).Return("jpeg", nil).Once()
		files.On("Save", ctx, image, "images").Return("images/new.jpg", int64(10), nil).Once()
		repo.On("UpdatePhoto", ctx, mock.Anything).Return(nil).Once()
		files.On("Delete", ctx, "images/old.png").Return(nil).Once()

		photo, err := service.Update(ctx, owner, 5, dto.PhotoInput{Visibility: "PRIVATE", Image: image})
		require.NoError(t, err)
		assert.Equal(t, "images/new.jpg", photo.Image)
		files.AssertExpectations(t)
		files.AssertNotCalled(t, "Delete", ctx, "images/new.jpg")
	})

	t.Run("old file survives a failed delete", func(t *testing.T) {
		service, repo, files := setup()
		image := createTestFile(t, "new.jpg", "jpeg bytes")

		repo.On("OwnedPhoto", ctx, int64(5), int64(1)).Return(stored, nil).Once()
		files.On("ValidateImage", image).Return("jpeg", nil).Once()
		files.On("Save", ctx, image, "images").Return("images/new.jpg", int64(10), nil).Once()
		repo.On("UpdatePhoto", ctx, mock.Anything).Return(nil).Once()
		files.On("Delete", ctx, "images/old.png").Return(errors.New("permission denied")).Once()

		_, err := service.Update(ctx, owner, 5, dto.PhotoInput{Visibility: "PRIVATE", Image: image})
		require.NoError(t, err)
		files.AssertExpectations(t)
	})

	t.Run("failed update discards the new image", func(t *testing.T) {
		service, repo, files := setup()
		image := createTestFile(t, "new.jpg", "jpeg bytes")

		repo.On("OwnedPhoto", ctx, int64(5), int64(1)).Return(stored, nil).Once()
		files.On("ValidateImage", image).Return("jpeg", nil).Once()
		files.On("Save", ctx, image, "images").Return("images/new.jpg", int64(10), nil).Once()
		repo.On("UpdatePhoto", ctx, mock.MatchedBy(func(p models.Photo) bool {
			return p.Image == "images/new.jpg"
		})).Return(errors.New("db down")).Once()
		files.On("Delete", ctx, "images/new.jpg").Return(nil).Once()

		_, err := service.Update(ctx, owner, 5, dto.PhotoInput{Visibility: "PRIVATE", Image: image})
		assert.Error(t, err)
		files.AssertExpectations(t)
	})
}

func TestPhotoService_Visible(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		visibility models.Visibility
		viewer     *models.User
		wantErr    bool
	}{
		{"public to anonymous", models.VisibilityPublic, nil, false},
		{"private to anonymous", models.VisibilityPrivate, nil, true},
		{"private to owner", models.VisibilityPrivate, &owner, false},
		{"shared to stranger", models.VisibilityShared, &models.User{ID: 2, Username: "bob"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _ := setup()

			repo.On("PhotoByID", ctx, int64(3)).
				Return(models.Photo{ID: 3, OwnerID: 1, OwnerUsername: "alice", Visibility: tt.visibility}, nil).Once()

			_, err := service.Visible(ctx, 3, tt.viewer)
			if tt.wantErr {
				assert.ErrorIs(t, err, storage.ErrPhotoNotFound)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPhotoService_Hero(t *testing.T) {
	ctx := context.Background()

	t.Run("no public photos", func(t *testing.T) {
		service, repo, _ := setup()
		repo.On("RandomPublicPhoto", ctx).Return(models.Photo{}, storage.ErrPhotoNotFound).Once()

		_, ok, err := service.Hero(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("random public photo", func(t *testing.T) {
		service, repo, _ := setup()
		repo.On("RandomPublicPhoto", ctx).Return(models.Photo{ID: 9, Title: "Sky"}, nil).Once()

		photo, ok, err := service.Hero(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Sky", photo.Title)
	})
}

func TestPhotoService_Gallery(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := setup()

	repo.On("ListPhotos", ctx, repository.PhotoFilter{Visibility: models.VisibilityPublic}).
		Return([]models.Photo{{ID: 1}, {ID: 2}}, nil).Once()

	photos, err := service.Gallery(ctx)
	require.NoError(t, err)
	assert.Len(t, photos, 2)
}
