package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
	"unicode/utf8"

	"imager/internal/domain/models"
	"imager/internal/lib/logger/sl"
	"imager/internal/lib/paginator"
	"imager/internal/lib/sanitize"
	"imager/internal/repository"
	"imager/internal/storage"
	"imager/internal/transport/http/dto"
)

// AlbumService manages albums and their photo membership.
type AlbumService struct {
	log    *slog.Logger
	albums repository.AlbumRepository
	photos repository.PhotoRepository
	now    func() time.Time
}

func NewAlbumService(log *slog.Logger, albums repository.AlbumRepository, photos repository.PhotoRepository) *AlbumService {
	return &AlbumService{
		log:    log,
		albums: albums,
		photos: photos,
		now:    time.Now,
	}
}

// AlbumDetail is an album with one page of its member photos.
type AlbumDetail struct {
	Album  models.Album
	Photos []models.Photo
	Page   paginator.Page
}

func (s *AlbumService) Create(ctx context.Context, owner models.User, req dto.AlbumInput) (models.Album, error) {
	const op = "service.AlbumService.Create"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("owner_id", owner.ID),
	)

	log.Info("creating album")

	if err := s.validate(ctx, owner.ID, req); err != nil {
		return models.Album{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	visibility := models.Visibility(req.Visibility)
	album := models.Album{
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		Title:         models.NormalizeTitle(req.Title),
		Description:   sanitize.Text(req.Description),
		CoverID:       coverID(req.Cover),
		PhotoIDs:      uniqueIDs(req.Photos),
		DateUploaded:  now,
		DateModified:  now,
		DatePublished: models.PublishedAt(visibility, nil, now),
		Visibility:    visibility,
	}

	id, err := s.albums.CreateAlbum(ctx, album)
	if err != nil {
		log.Error("failed to create album", sl.Err(err))
		return models.Album{}, fmt.Errorf("%s: %w", op, err)
	}
	album.ID = id

	log.Info("album created", slog.Int64("album_id", id))

	return album, nil
}

func (s *AlbumService) Update(ctx context.Context, owner models.User, id int64, req dto.AlbumInput) (models.Album, error) {
	const op = "service.AlbumService.Update"
	log := s.log.With(
		slog.String("op", op),
		slog.Int64("album_id", id),
	)

	album, err := s.albums.OwnedAlbum(ctx, id, owner.ID)
	if err != nil {
		return models.Album{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.validate(ctx, owner.ID, req); err != nil {
		return models.Album{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	album.Title = models.NormalizeTitle(req.Title)
	album.Description = sanitize.Text(req.Description)
	album.CoverID = coverID(req.Cover)
	album.PhotoIDs = uniqueIDs(req.Photos)
	album.Visibility = models.Visibility(req.Visibility)
	album.DatePublished = models.PublishedAt(album.Visibility, album.DatePublished, now)
	if now.After(album.DateModified) {
		album.DateModified = now
	}

	if err := s.albums.UpdateAlbum(ctx, album); err != nil {
		log.Error("failed to update album", sl.Err(err))
		return models.Album{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("album updated")

	return album, nil
}

// validate checks the form fields and that every referenced photo, the
// cover included, belongs to ownerID.
func (s *AlbumService) validate(ctx context.Context, ownerID int64, req dto.AlbumInput) error {
	ve := models.NewValidationError()
	if !models.Visibility(req.Visibility).Valid() {
		ve.Add("published", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", req.Visibility))
	}
	if utf8.RuneCountInString(req.Title) > models.MaxTitleLength {
		ve.Add("title", fmt.Sprintf("Ensure this value has at most %d characters.", models.MaxTitleLength))
	}

	refs := uniqueIDs(req.Photos)
	if req.Cover != 0 {
		refs = uniqueIDs(append(refs, req.Cover))
	}
	if len(refs) > 0 {
		owned, err := s.photos.ListPhotos(ctx, repository.PhotoFilter{OwnerID: ownerID, IDs: refs})
		if err != nil {
			return err
		}
		mine := make(map[int64]bool, len(owned))
		for _, p := range owned {
			mine[p.ID] = true
		}

		for _, id := range req.Photos {
			if !mine[id] {
				ve.Add("photos", fmt.Sprintf("Select a valid choice. %d is not one of the available choices.", id))
			}
		}
		if req.Cover != 0 && !mine[req.Cover] {
			ve.Add("cover", "Select a valid choice. That choice is not one of the available choices.")
		}
	}

	return ve.Err()
}

func (s *AlbumService) Owned(ctx context.Context, id, ownerID int64) (models.Album, error) {
	const op = "service.AlbumService.Owned"

	album, err := s.albums.OwnedAlbum(ctx, id, ownerID)
	if err != nil {
		return models.Album{}, fmt.Errorf("%s: %w", op, err)
	}
	return album, nil
}

// Detail returns the album if viewer may see it, with the requested page of
// member photos ordered by upload date.
func (s *AlbumService) Detail(ctx context.Context, id int64, viewer *models.User, rawPage string) (AlbumDetail, error) {
	const op = "service.AlbumService.Detail"

	album, err := s.albums.AlbumByID(ctx, id)
	if err != nil {
		return AlbumDetail{}, fmt.Errorf("%s: %w", op, err)
	}
	if !models.CanView(album, viewer) {
		return AlbumDetail{}, fmt.Errorf("%s: %w", op, storage.ErrAlbumNotFound)
	}

	filter := repository.PhotoFilter{AlbumID: album.ID}
	total, err := s.photos.CountPhotos(ctx, filter)
	if err != nil {
		return AlbumDetail{}, fmt.Errorf("%s: %w", op, err)
	}

	page := paginator.Resolve(rawPage, total, paginator.DefaultPerPage)
	filter.Limit, filter.Offset = page.Limit(), page.Offset()

	photos, err := s.photos.ListPhotos(ctx, filter)
	if err != nil {
		return AlbumDetail{}, fmt.Errorf("%s: %w", op, err)
	}

	return AlbumDetail{Album: album, Photos: photos, Page: page}, nil
}

// Gallery lists PUBLIC albums of every owner.
func (s *AlbumService) Gallery(ctx context.Context) ([]models.Album, error) {
	const op = "service.AlbumService.Gallery"

	albums, err := s.albums.ListAlbums(ctx, repository.AlbumFilter{Visibility: models.VisibilityPublic})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return albums, nil
}

func coverID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
