package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"imager/internal/domain/models"
	"imager/internal/repository"
	"imager/internal/storage"
	"imager/internal/transport/http/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAlbumRepository struct {
	mock.Mock
}

func (m *MockAlbumRepository) CreateAlbum(ctx context.Context, album models.Album) (int64, error) {
	args := m.Called(ctx, album)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAlbumRepository) UpdateAlbum(ctx context.Context, album models.Album) error {
	args := m.Called(ctx, album)
	return args.Error(0)
}

func (m *MockAlbumRepository) AlbumByID(ctx context.Context, id int64) (models.Album, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Album), args.Error(1)
}

func (m *MockAlbumRepository) OwnedAlbum(ctx context.Context, id, ownerID int64) (models.Album, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Get(0).(models.Album), args.Error(1)
}

func (m *MockAlbumRepository) ListAlbums(ctx context.Context, f repository.AlbumFilter) ([]models.Album, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.Album), args.Error(1)
}

func (m *MockAlbumRepository) CountAlbums(ctx context.Context, f repository.AlbumFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

type MockPhotoRepository struct {
	mock.Mock
}

func (m *MockPhotoRepository) CreatePhoto(ctx context.Context, photo models.Photo) (int64, error) {
	args := m.Called(ctx, photo)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPhotoRepository) UpdatePhoto(ctx context.Context, photo models.Photo) error {
	return m.Called(ctx, photo).Error(0)
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

var (
	testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	alice   = models.User{ID: 1, Username: "alice"}
)

func newTestAlbumService() (*AlbumService, *MockAlbumRepository, *MockPhotoRepository) {
	albums, photos := new(MockAlbumRepository), new(MockPhotoRepository)
	svc := NewAlbumService(slog.New(slog.NewTextHandler(io.Discard, nil)), albums, photos)
	svc.now = func() time.Time { return testNow }
	return svc, albums, photos
}

func TestAlbumService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		req        dto.AlbumInput
		owned      []models.Photo
		mockCreate bool
		wantFields []string
	}{
		{
			name:       "public album with owned photos",
			req:        dto.AlbumInput{Title: "Trip", Visibility: "PUBLIC", Photos: []int64{2, 1, 2}, Cover: 1},
			owned:      []models.Photo{{ID: 1}, {ID: 2}},
			mockCreate: true,
		},
		{
			name:       "foreign photo rejected",
			req:        dto.AlbumInput{Title: "Trip", Visibility: "PRIVATE", Photos: []int64{1, 99}},
			owned:      []models.Photo{{ID: 1}},
			wantFields: []string{"photos"},
		},
		{
			name:       "foreign cover rejected",
			req:        dto.AlbumInput{Visibility: "PRIVATE", Cover: 99},
			owned:      []models.Photo{},
			wantFields: []string{"cover"},
		},
		{
			name:       "unknown visibility",
			req:        dto.AlbumInput{Visibility: "HIDDEN"},
			wantFields: []string{"published"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, albums, photos := newTestAlbumService()

			if tt.owned != nil {
				photos.On("ListPhotos", ctx, mock.MatchedBy(func(f repository.PhotoFilter) bool {
					return f.OwnerID == alice.ID
				})).Return(tt.owned, nil).Once()
			}
			if tt.mockCreate {
				albums.On("CreateAlbum", ctx, mock.MatchedBy(func(a models.Album) bool {
					return a.OwnerID == alice.ID &&
						assert.ObjectsAreEqual([]int64{1, 2}, a.PhotoIDs) &&
						a.CoverID != nil && *a.CoverID == 1 &&
						a.DatePublished != nil && a.DatePublished.Equal(testNow)
				})).Return(int64(5), nil).Once()
			}

			album, err := svc.Create(ctx, alice, tt.req)
			if len(tt.wantFields) > 0 {
				ve, ok := models.IsValidationError(err)
				require.True(t, ok, "expected validation error, got %v", err)
				for _, f := range tt.wantFields {
					assert.Contains(t, ve.Fields, f)
				}
				albums.AssertNotCalled(t, "CreateAlbum", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(5), album.ID)
			albums.AssertExpectations(t)
		})
	}

	t.Run("blank title defaults", func(t *testing.T) {
		svc, albums, _ := newTestAlbumService()

		albums.On("CreateAlbum", ctx, mock.MatchedBy(func(a models.Album) bool {
			return a.Title == models.DefaultTitle && a.DatePublished == nil && a.CoverID == nil
		})).Return(int64(6), nil).Once()

		_, err := svc.Create(ctx, alice, dto.AlbumInput{Visibility: "SHARED"})
		require.NoError(t, err)
	})
}

func TestAlbumService_Update(t *testing.T) {
	ctx := context.Background()
	uploaded := testNow.Add(-48 * time.Hour)

	stored := models.Album{
		ID:           5,
		OwnerID:      1,
		Title:        "Trip",
		PhotoIDs:     []int64{1},
		DateUploaded: uploaded,
		DateModified: uploaded,
		Visibility:   models.VisibilityPrivate,
	}

	t.Run("publishing stamps date and keeps upload date", func(t *testing.T) {
		svc, albums, _ := newTestAlbumService()

		albums.On("OwnedAlbum", ctx, int64(5), int64(1)).Return(stored, nil).Once()
		albums.On("UpdateAlbum", ctx, mock.Anything).Return(nil).Once()

		album, err := svc.Update(ctx, alice, 5, dto.AlbumInput{Title: "Trip", Visibility: "PUBLIC"})
		require.NoError(t, err)
		require.NotNil(t, album.DatePublished)
		assert.Equal(t, testNow, *album.DatePublished)
		assert.Equal(t, uploaded, album.DateUploaded)
		assert.Equal(t, testNow, album.DateModified)
		assert.Empty(t, album.PhotoIDs)
	})

	t.Run("foreign album", func(t *testing.T) {
		svc, albums, _ := newTestAlbumService()

		albums.On("OwnedAlbum", ctx, int64(5), int64(2)).Return(models.Album{}, storage.ErrAlbumNotFound).Once()

		_, err := svc.Update(ctx, models.User{ID: 2, Username: "bob"}, 5, dto.AlbumInput{Visibility: "PUBLIC"})
		assert.ErrorIs(t, err, storage.ErrAlbumNotFound)
		albums.AssertNotCalled(t, "UpdateAlbum", mock.Anything, mock.Anything)
	})
}

func TestAlbumService_Detail(t *testing.T) {
	ctx := context.Background()

	public := models.Album{ID: 3, OwnerID: 1, OwnerUsername: "alice", Visibility: models.VisibilityPublic}
	private := models.Album{ID: 4, OwnerID: 1, OwnerUsername: "alice", Visibility: models.VisibilityPrivate}

	t.Run("out of range page clamps to last", func(t *testing.T) {
		svc, albums, photos := newTestAlbumService()

		albums.On("AlbumByID", ctx, int64(3)).Return(public, nil).Once()
		photos.On("CountPhotos", ctx, repository.PhotoFilter{AlbumID: 3}).Return(10, nil).Once()
		photos.On("ListPhotos", ctx, repository.PhotoFilter{AlbumID: 3, Limit: 4, Offset: 8}).
			Return([]models.Photo{{ID: 9}, {ID: 10}}, nil).Once()

		detail, err := svc.Detail(ctx, 3, nil, "99")
		require.NoError(t, err)
		assert.Equal(t, 3, detail.Page.Number)
		assert.Len(t, detail.Photos, 2)
	})

	t.Run("private album hidden from strangers", func(t *testing.T) {
		svc, albums, _ := newTestAlbumService()

		albums.On("AlbumByID", ctx, int64(4)).Return(private, nil).Once()

		_, err := svc.Detail(ctx, 4, &models.User{ID: 2, Username: "bob"}, "")
		assert.ErrorIs(t, err, storage.ErrAlbumNotFound)
	})

	t.Run("private album shown to owner", func(t *testing.T) {
		svc, albums, photos := newTestAlbumService()

		albums.On("AlbumByID", ctx, int64(4)).Return(private, nil).Once()
		photos.On("CountPhotos", ctx, repository.PhotoFilter{AlbumID: 4}).Return(0, nil).Once()
		photos.On("ListPhotos", ctx, repository.PhotoFilter{AlbumID: 4, Limit: 4}).Return([]models.Photo{}, nil).Once()

		detail, err := svc.Detail(ctx, 4, &alice, "abc")
		require.NoError(t, err)
		assert.Equal(t, 1, detail.Page.Number)
		assert.Equal(t, 1, detail.Page.NumPages)
	})

	t.Run("repository error", func(t *testing.T) {
		svc, albums, _ := newTestAlbumService()

		albums.On("AlbumByID", ctx, int64(3)).Return(models.Album{}, errors.New("db down")).Once()

		_, err := svc.Detail(ctx, 3, nil, "1")
		assert.ErrorContains(t, err, "db down")
	})
}

func TestAlbumService_Gallery(t *testing.T) {
	ctx := context.Background()
	svc, albums, _ := newTestAlbumService()

	albums.On("ListAlbums", ctx, repository.AlbumFilter{Visibility: models.VisibilityPublic}).
		Return([]models.Album{{ID: 1, Visibility: models.VisibilityPublic}}, nil).Once()

	list, err := svc.Gallery(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
