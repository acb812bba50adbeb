package repository

import (
	"context"
	"time"

	"imager/internal/domain/models"
)

type UserRepository interface {
	CreateUserWithProfile(ctx context.Context, user models.User) (int64, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
	ActivateUser(ctx context.Context, id int64) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

type ProfileRepository interface {
	ProfileByUserID(ctx context.Context, userID int64) (models.Profile, error)
	UpdateProfile(ctx context.Context, user models.User, profile models.Profile) error
	ListActive(ctx context.Context) ([]models.Profile, error)
}

// PhotoFilter narrows photo queries. Zero values mean "any".
type PhotoFilter struct {
	OwnerID    int64
	AlbumID    int64
	Visibility models.Visibility
	IDs        []int64
	Limit      uint64
	Offset     uint64
}

type PhotoRepository interface {
	CreatePhoto(ctx context.Context, photo models.Photo) (int64, error)
	UpdatePhoto(ctx context.Context, photo models.Photo) error
	PhotoByID(ctx context.Context, id int64) (models.Photo, error)
	OwnedPhoto(ctx context.Context, id, ownerID int64) (models.Photo, error)
	ListPhotos(ctx context.Context, f PhotoFilter) ([]models.Photo, error)
	CountPhotos(ctx context.Context, f PhotoFilter) (int, error)
	RandomPublicPhoto(ctx context.Context) (models.Photo, error)
}

// AlbumFilter narrows album queries. Zero values mean "any".
type AlbumFilter struct {
	OwnerID    int64
	Visibility models.Visibility
	Limit      uint64
	Offset     uint64
}

type AlbumRepository interface {
	CreateAlbum(ctx context.Context, album models.Album) (int64, error)
	UpdateAlbum(ctx context.Context, album models.Album) error
	AlbumByID(ctx context.Context, id int64) (models.Album, error)
	OwnedAlbum(ctx context.Context, id, ownerID int64) (models.Album, error)
	ListAlbums(ctx context.Context, f AlbumFilter) ([]models.Album, error)
	CountAlbums(ctx context.Context, f AlbumFilter) (int, error)
}

type TokenRepository interface {
	SaveActivationToken(ctx context.Context, userID int64, token string, exp time.Duration) error
	ConsumeActivationToken(ctx context.Context, userID int64, token string) (bool, error)
}
