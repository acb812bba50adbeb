package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"imager/internal/domain/models"
	"imager/internal/lib/logger/sl"
	"imager/internal/lib/sanitize"
	"imager/internal/metrics"
	"imager/internal/repository"
	"imager/internal/storage"
	filestorage "imager/internal/storage/filestorage"
	"imager/internal/transport/http/dto"
)

const imagesDir = "images"

// PhotoService owns photo uploads and every photo read path.
type PhotoService struct {
	log         *slog.Logger
	repo        repository.PhotoRepository
	fileStorage filestorage.FileStorage
	now         func() time.Time
}

func NewPhotoService(log *slog.Logger, repo repository.PhotoRepository, fileStorage filestorage.FileStorage) *PhotoService {
	return &PhotoService{
		log:         log,
		repo:        repo,
		fileStorage: fileStorage,
		now:         time.Now,
	}
}

func (s *PhotoService) Create(ctx context.Context, owner models.User, input dto.PhotoInput) (models.Photo, error) {
	const op = "media_service.Create"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("owner_id", owner.ID),
	)

	log.Info("create photo")

	ve := validatePhoto(input)
	if input.Image == nil {
		ve.Add("image", "This field is required.")
	} else if _, err := s.fileStorage.ValidateImage(input.Image); err != nil {
		ve.Add("image", imageError(err))
	}
	if err := ve.Err(); err != nil {
		return models.Photo{}, fmt.Errorf("%s: %w", op, err)
	}

	filePath, _, err := s.fileStorage.Save(ctx, input.Image, imagesDir)
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			ve.Add("image", imageError(err))
			return models.Photo{}, fmt.Errorf("%s: %w", op, ve)
		}
		log.Error("failed to save file", sl.Err(err))

		return models.Photo{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	visibility := models.Visibility(input.Visibility)
	photo := models.Photo{
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		Image:         filePath,
		Title:         models.NormalizeTitle(input.Title),
		Description:   sanitize.Text(input.Description),
		DateUploaded:  now,
		DateModified:  now,
		DatePublished: models.PublishedAt(visibility, nil, now),
		Visibility:    visibility,
	}

	photo.ID, err = s.repo.CreatePhoto(ctx, photo)
	if err != nil {
		_ = s.fileStorage.Delete(ctx, filePath)
		metrics.PhotoUploadsTotal.WithLabelValues("discarded").Inc()
		log.Error("failed to save photo to database", sl.Err(err))

		return models.Photo{}, fmt.Errorf("%s: %w", op, err)
	}
	metrics.PhotoUploadsTotal.WithLabelValues("stored").Inc()

	log.Info("photo created", slog.Int64("photo_id", photo.ID))

	return photo, nil
}

// Update edits a photo owned by owner. A nil input.Image keeps the stored file.
func (s *PhotoService) Update(ctx context.Context, owner models.User, id int64, input dto.PhotoInput) (models.Photo, error) {
	const op = "media_service.Update"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("photo_id", id),
	)

	photo, err := s.repo.OwnedPhoto(ctx, id, owner.ID)
	if err != nil {
		return models.Photo{}, fmt.Errorf("%s: %w", op, err)
	}

	ve := validatePhoto(input)
	if input.Image != nil {
		if _, err := s.fileStorage.ValidateImage(input.Image); err != nil {
			ve.Add("image", imageError(err))
		}
	}
	if err := ve.Err(); err != nil {
		return models.Photo{}, fmt.Errorf("%s: %w", op, err)
	}

	oldImage := photo.Image
	var newFile string
	if input.Image != nil {
		newFile, _, err = s.fileStorage.Save(ctx, input.Image, imagesDir)
		if err != nil {
			if errors.Is(err, storage.ErrFileTooLarge) {
				ve.Add("image", imageError(err))
				return models.Photo{}, fmt.Errorf("%s: %w", op, ve)
			}
			log.Error("failed to save file", sl.Err(err))

			return models.Photo{}, fmt.Errorf("%s: %w", op, err)
		}
		photo.Image = newFile
	}

	now := s.now().UTC()
	photo.Title = models.NormalizeTitle(input.Title)
	photo.Description = sanitize.Text(input.Description)
	photo.Visibility = models.Visibility(input.Visibility)
	photo.DatePublished = models.PublishedAt(photo.Visibility, photo.DatePublished, now)
	if now.After(photo.DateModified) {
		photo.DateModified = now
	}

	if err := s.repo.UpdatePhoto(ctx, photo); err != nil {
		if newFile != "" {
			_ = s.fileStorage.Delete(ctx, newFile)
			metrics.PhotoUploadsTotal.WithLabelValues("discarded").Inc()
		}
		log.Error("failed to update photo", sl.Err(err))

		return models.Photo{}, fmt.Errorf("%s: %w", op, err)
	}
	if newFile != "" {
		metrics.PhotoUploadsTotal.WithLabelValues("stored").Inc()

		if oldImage != "" && oldImage != newFile {
			if err := s.fileStorage.Delete(ctx, oldImage); err != nil {
				log.Warn("failed to delete replaced file", slog.String("file", oldImage), sl.Err(err))
			}
		}
	}

	log.Info("photo updated")

	return photo, nil
}

func validatePhoto(input dto.PhotoInput) *models.ValidationError {
	ve := models.NewValidationError()
	if !models.Visibility(input.Visibility).Valid() {
		ve.Add("published", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", input.Visibility))
	}
	if utf8.RuneCountInString(input.Title) > models.MaxTitleLength {
		ve.Add("title", fmt.Sprintf("Ensure this value has at most %d characters.", models.MaxTitleLength))
	}
	return ve
}

func imageError(err error) string {
	if errors.Is(err, storage.ErrFileTooLarge) {
		return "The uploaded file is too large."
	}
	return "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
}

// Owned returns the photo only if owner owns it.
func (s *PhotoService) Owned(ctx context.Context, id, ownerID int64) (models.Photo, error) {
	const op = "media_service.Owned"

	photo, err := s.repo.OwnedPhoto(ctx, id, ownerID)
	if err != nil {
		return models.Photo{}, fmt.Errorf("%s: %w", op, err)
	}
	return photo, nil
}

// Visible returns the photo if viewer may see it. A hidden photo is reported
// as storage.ErrPhotoNotFound, same as a missing one.
func (s *PhotoService) Visible(ctx context.Context, id int64, viewer *models.User) (models.Photo, error) {
	const op = "media_service.Visible"

	photo, err := s.repo.PhotoByID(ctx, id)
	if err != nil {
		return models.Photo{}, fmt.Errorf("%s: %w", op, err)
	}
	if !models.CanView(photo, viewer) {
		return models.Photo{}, fmt.Errorf("%s: %w", op, storage.ErrPhotoNotFound)
	}
	return photo, nil
}

// Gallery lists PUBLIC photos of every owner.
func (s *PhotoService) Gallery(ctx context.Context) ([]models.Photo, error) {
	const op = "media_service.Gallery"

	photos, err := s.repo.ListPhotos(ctx, repository.PhotoFilter{Visibility: models.VisibilityPublic})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return photos, nil
}

// OwnerPhotos lists every photo of one owner regardless of visibility.
func (s *PhotoService) OwnerPhotos(ctx context.Context, ownerID int64) ([]models.Photo, error) {
	const op = "media_service.OwnerPhotos"

	photos, err := s.repo.ListPhotos(ctx, repository.PhotoFilter{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return photos, nil
}

// Hero picks a random PUBLIC photo for the home page. ok is false when
// there is none.
func (s *PhotoService) Hero(ctx context.Context) (photo models.Photo, ok bool, err error) {
	const op = "media_service.Hero"

	photo, err = s.repo.RandomPublicPhoto(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrPhotoNotFound) {
			return models.Photo{}, false, nil
		}
		return models.Photo{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return photo, true, nil
}

func (s *PhotoService) ImageURL(path string) string {
	return s.fileStorage.URL(path)
}
