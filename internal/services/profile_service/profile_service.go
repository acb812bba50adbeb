package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"imager/internal/domain/models"
	"imager/internal/lib/logger/sl"
	"imager/internal/lib/sanitize"
	"imager/internal/repository"
	"imager/internal/storage"
	"imager/internal/transport/http/dto"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

// NUMERIC(10,2)
var feeRe = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)

// Counts breaks an owner's photos and albums down by visibility.
type Counts struct {
	PhotoPrivate int
	PhotoPublic  int
	AlbumPrivate int
	AlbumPublic  int
}

type ProfilePage struct {
	User    models.User
	Profile models.Profile
	Owner   bool
	Photos  []models.Photo
	Albums  []models.Album
	// Counts is nil unless the viewer owns the profile.
	Counts *Counts
}

type ProfileService struct {
	log      *slog.Logger
	users    repository.UserRepository
	profiles repository.ProfileRepository
	photos   repository.PhotoRepository
	albums   repository.AlbumRepository
}

func NewProfileService(
	log *slog.Logger,
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	photos repository.PhotoRepository,
	albums repository.AlbumRepository,
) *ProfileService {
	return &ProfileService{
		log:      log,
		users:    users,
		profiles: profiles,
		photos:   photos,
		albums:   albums,
	}
}

// Page renders username's profile as seen by viewer. An empty username means
// the viewer's own profile; a trailing slash is ignored.
func (s *ProfileService) Page(ctx context.Context, username string, viewer *models.User) (ProfilePage, error) {
	const op = "profile_service.Page"

	username = strings.TrimSuffix(username, "/")
	if username == "" {
		if viewer == nil {
			return ProfilePage{}, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
		}
		username = viewer.Username
	}

	user, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ProfilePage{}, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
		}
		return ProfilePage{}, fmt.Errorf("%s: %w", op, err)
	}

	profile, err := s.profiles.ProfileByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ProfilePage{}, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
		}
		return ProfilePage{}, fmt.Errorf("%s: %w", op, err)
	}

	page := ProfilePage{
		User:    user,
		Profile: profile,
		Owner:   viewer != nil && viewer.Username == user.Username,
	}

	photoFilter := repository.PhotoFilter{OwnerID: user.ID}
	albumFilter := repository.AlbumFilter{OwnerID: user.ID}
	if !page.Owner {
		photoFilter.Visibility = models.VisibilityPublic
		albumFilter.Visibility = models.VisibilityPublic
	}

	if page.Photos, err = s.photos.ListPhotos(ctx, photoFilter); err != nil {
		return ProfilePage{}, fmt.Errorf("%s: %w", op, err)
	}
	if page.Albums, err = s.albums.ListAlbums(ctx, albumFilter); err != nil {
		return ProfilePage{}, fmt.Errorf("%s: %w", op, err)
	}

	if page.Owner {
		if page.Counts, err = s.counts(ctx, user.ID); err != nil {
			return ProfilePage{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	return page, nil
}

func (s *ProfileService) counts(ctx context.Context, ownerID int64) (*Counts, error) {
	var (
		c   Counts
		err error
	)

	if c.PhotoPrivate, err = s.photos.CountPhotos(ctx, repository.PhotoFilter{OwnerID: ownerID, Visibility: models.VisibilityPrivate}); err != nil {
		return nil, err
	}
	if c.PhotoPublic, err = s.photos.CountPhotos(ctx, repository.PhotoFilter{OwnerID: ownerID, Visibility: models.VisibilityPublic}); err != nil {
		return nil, err
	}
	if c.AlbumPrivate, err = s.albums.CountAlbums(ctx, repository.AlbumFilter{OwnerID: ownerID, Visibility: models.VisibilityPrivate}); err != nil {
		return nil, err
	}
	if c.AlbumPublic, err = s.albums.CountAlbums(ctx, repository.AlbumFilter{OwnerID: ownerID, Visibility: models.VisibilityPublic}); err != nil {
		return nil, err
	}

	return &c, nil
}

// EditForm returns the current values for the profile edit form.
func (s *ProfileService) EditForm(ctx context.Context, userID int64) (dto.ProfileInput, error) {
	const op = "profile_service.EditForm"

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return dto.ProfileInput{}, fmt.Errorf("%s: %w", op, err)
	}

	profile, err := s.profiles.ProfileByUserID(ctx, userID)
	if err != nil {
		return dto.ProfileInput{}, fmt.Errorf("%s: %w", op, err)
	}

	return dto.ProfileInputFrom(user, profile), nil
}

// Update always writes the profile of userID; the form carries no identity.
func (s *ProfileService) Update(ctx context.Context, userID int64, input dto.ProfileInput) error {
	const op = "profile_service.Update"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("user_id", userID),
	)

	ve := models.NewValidationError()

	var fee *string
	if f := strings.TrimSpace(input.Fee); f != "" {
		if !feeRe.MatchString(f) {
			ve.Add("fee", "Enter a number with at most 8 digits before and 2 after the decimal point.")
		}
		fee = &f
	}
	if !models.ValidCamera(models.CameraType(input.Camera)) {
		ve.Add("camera", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", input.Camera))
	}
	if !models.ValidServices(input.Services) {
		ve.Add("services", "Select a valid choice.")
	}
	if !models.ValidPhotoStyles(input.PhotoStyles) {
		ve.Add("photostyles", "Select a valid choice.")
	}
	if err := ve.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:        userID,
		Email:     strings.TrimSpace(input.Email),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
	}
	profile := models.Profile{
		UserID:      userID,
		Website:     strings.TrimSpace(input.Website),
		Location:    strings.TrimSpace(input.Location),
		Fee:         fee,
		Camera:      models.CameraType(input.Camera),
		Services:    input.Services,
		PhotoStyles: input.PhotoStyles,
		Bio:         sanitize.Text(input.Bio),
		Phone:       strings.TrimSpace(input.Phone),
		IsActive:    input.IsActive,
	}

	if err := s.profiles.UpdateProfile(ctx, user, profile); err != nil {
		log.Error("failed to update profile", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("profile updated")

	return nil
}

// Directory lists photographers whose account and profile are both active.
func (s *ProfileService) Directory(ctx context.Context) ([]models.Profile, error) {
	const op = "profile_service.Directory"

	profiles, err := s.profiles.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profiles, nil
}
