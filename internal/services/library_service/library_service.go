package services

import (
	"context"
	"fmt"
	"log/slog"

	"imager/internal/domain/models"
	"imager/internal/lib/paginator"
	"imager/internal/repository"
)

// Library is the owner's dashboard: every photo and album they own, each
// list paged on its own.
type Library struct {
	Photos    []models.Photo
	PhotoPage paginator.Page
	Albums    []models.Album
	AlbumPage paginator.Page
}

type LibraryService struct {
	log    *slog.Logger
	photos repository.PhotoRepository
	albums repository.AlbumRepository
}

func NewLibraryService(log *slog.Logger, photos repository.PhotoRepository, albums repository.AlbumRepository) *LibraryService {
	return &LibraryService{
		log:    log,
		photos: photos,
		albums: albums,
	}
}

func (s *LibraryService) Library(ctx context.Context, ownerID int64, rawPhotoPage, rawAlbumPage string) (Library, error) {
	const op = "library_service.Library"

	var lib Library

	photoFilter := repository.PhotoFilter{OwnerID: ownerID}
	total, err := s.photos.CountPhotos(ctx, photoFilter)
	if err != nil {
		return Library{}, fmt.Errorf("%s: %w", op, err)
	}
	lib.PhotoPage = paginator.Resolve(rawPhotoPage, total, paginator.DefaultPerPage)
	photoFilter.Limit, photoFilter.Offset = lib.PhotoPage.Limit(), lib.PhotoPage.Offset()

	lib.Photos, err = s.photos.ListPhotos(ctx, photoFilter)
	if err != nil {
		return Library{}, fmt.Errorf("%s: %w", op, err)
	}

	albumFilter := repository.AlbumFilter{OwnerID: ownerID}
	total, err = s.albums.CountAlbums(ctx, albumFilter)
	if err != nil {
		return Library{}, fmt.Errorf("%s: %w", op, err)
	}
	lib.AlbumPage = paginator.Resolve(rawAlbumPage, total, paginator.DefaultPerPage)
	albumFilter.Limit, albumFilter.Offset = lib.AlbumPage.Limit(), lib.AlbumPage.Offset()

	lib.Albums, err = s.albums.ListAlbums(ctx, albumFilter)
	if err != nil {
		return Library{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("library loaded",
		slog.String("op", op),
		slog.Int64("owner_id", ownerID),
		slog.Int("photo_page", lib.PhotoPage.Number),
		slog.Int("album_page", lib.AlbumPage.Number),
	)

	return lib, nil
}
