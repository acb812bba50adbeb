package http

import (
	"errors"
	"log/slog"
	"net/http"

	"imager/internal/domain/models"
	"imager/internal/lib/logger/sl"
	"imager/internal/transport/http/dto"

	"github.com/labstack/echo/v4"
)

const libraryPath = "/images/library"

func (r *Routers) covers(data echo.Map) echo.Map {
	data["DefaultCover"] = r.opts.CoverURL
	data["DefaultCoverThumb"] = r.opts.CoverThumbURL
	return data
}

// Library is the owner's dashboard. Photos and albums page independently.
func (r *Routers) Library(c echo.Context) error {
	const op = "http.routers.Library"

	log := r.log.With(slog.String("op", op))
	user := currentUser(c)

	lib, err := r.LibraryService.Library(c.Request().Context(), user.ID, c.QueryParam("photo_page"), c.QueryParam("album_page"))
	if err != nil {
		log.Error("failed to load library", sl.Err(err))
		return err
	}

	return c.Render(http.StatusOK, "library", r.covers(echo.Map{
		"Photos":    lib.Photos,
		"PhotoPage": lib.PhotoPage,
		"Albums":    lib.Albums,
		"AlbumPage": lib.AlbumPage,
	}))
}

func (r *Routers) PhotoGallery(c echo.Context) error {
	photos, err := r.PhotoService.Gallery(c.Request().Context())
	if err != nil {
		r.log.Error("failed to load photo gallery", sl.Err(err))
		return err
	}
	return c.Render(http.StatusOK, "photo_gallery", echo.Map{"Photos": photos})
}

func (r *Routers) AlbumGallery(c echo.Context) error {
	albums, err := r.AlbumService.Gallery(c.Request().Context())
	if err != nil {
		r.log.Error("failed to load album gallery", sl.Err(err))
		return err
	}
	return c.Render(http.StatusOK, "album_gallery", r.covers(echo.Map{"Albums": albums}))
}

func (r *Routers) PhotoDetail(c echo.Context) error {
	const op = "http.routers.PhotoDetail"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c)
	if err != nil {
		return err
	}

	viewer := currentUser(c)
	photo, err := r.PhotoService.Visible(c.Request().Context(), id, viewer)
	if err != nil {
		return r.notFound(log, err)
	}

	return c.Render(http.StatusOK, "photo_detail", echo.Map{
		"Photo":   photo,
		"IsOwner": viewer != nil && viewer.ID == photo.OwnerID,
	})
}

func (r *Routers) AlbumDetail(c echo.Context) error {
	const op = "http.routers.AlbumDetail"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c)
	if err != nil {
		return err
	}

	viewer := currentUser(c)
	detail, err := r.AlbumService.Detail(c.Request().Context(), id, viewer, c.QueryParam("page"))
	if err != nil {
		return r.notFound(log, err)
	}

	return c.Render(http.StatusOK, "album_detail", r.covers(echo.Map{
		"Album":   detail.Album,
		"Photos":  detail.Photos,
		"Page":    detail.Page,
		"IsOwner": viewer != nil && viewer.ID == detail.Album.OwnerID,
	}))
}

func photoForm(action string, input dto.PhotoInput, editing bool) echo.Map {
	return echo.Map{
		"Action":      action,
		"Editing":     editing,
		"Form":        input,
		"Visibility":  models.VisibilityChoices,
		"ImageNeeded": !editing,
	}
}

// bindPhoto reads the photo form. A missing file leaves Image nil.
func bindPhoto(c echo.Context) (dto.PhotoInput, error) {
	var input dto.PhotoInput
	if err := c.Bind(&input); err != nil {
		return input, echo.ErrBadRequest
	}

	file, err := c.FormFile("image")
	switch {
	case err == nil:
		input.Image = file
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return input, echo.ErrBadRequest
	}

	return input, nil
}

func (r *Routers) PhotoAddPage(c echo.Context) error {
	input := dto.PhotoInput{Visibility: string(models.VisibilityPrivate)}
	return c.Render(http.StatusOK, "photo_form", photoForm("/images/photos/add", input, false))
}

func (r *Routers) PhotoAdd(c echo.Context) error {
	input, err := bindPhoto(c)
	if err != nil {
		return err
	}

	data := photoForm("/images/photos/add", input, false)
	if err := c.Validate(input); err != nil {
		return renderInvalid(c, "photo_form", data, err)
	}

	if _, err := r.PhotoService.Create(c.Request().Context(), *currentUser(c), input); err != nil {
		return renderInvalid(c, "photo_form", data, err)
	}

	return c.Redirect(http.StatusFound, libraryPath)
}

func (r *Routers) PhotoEditPage(c echo.Context) error {
	const op = "http.routers.PhotoEditPage"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c)
	if err != nil {
		return err
	}

	photo, err := r.PhotoService.Owned(c.Request().Context(), id, currentUser(c).ID)
	if err != nil {
		return r.notFound(log, err)
	}

	data := photoForm(c.Request().URL.Path, dto.PhotoInputFrom(photo), true)
	data["Photo"] = photo
	return c.Render(http.StatusOK, "photo_form", data)
}

// PhotoEdit checks ownership before looking at the form so a foreign id is
// a 404 whatever was submitted.
func (r *Routers) PhotoEdit(c echo.Context) error {
	const op = "http.routers.PhotoEdit"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c)
	if err != nil {
		return err
	}

	user := currentUser(c)
	photo, err := r.PhotoService.Owned(c.Request().Context(), id, user.ID)
	if err != nil {
		return r.notFound(log, err)
	}

	input, err := bindPhoto(c)
	if err != nil {
		return err
	}

	data := photoForm(c.Request().URL.Path, input, true)
	data["Photo"] = photo
	if err := c.Validate(input); err != nil {
		return renderInvalid(c, "photo_form", data, err)
	}

	if _, err := r.PhotoService.Update(c.Request().Context(), *user, id, input); err != nil {
		if _, ok := models.IsValidationError(err); ok {
			return renderInvalid(c, "photo_form", data, err)
		}
		return r.notFound(log, err)
	}

	return c.Redirect(http.StatusFound, libraryPath)
}

func (r *Routers) albumForm(c echo.Context, action string, input dto.AlbumInput, editing bool) (echo.Map, error) {
	photos, err := r.PhotoService.OwnerPhotos(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return nil, err
	}
	return echo.Map{
		"Action":     action,
		"Editing":    editing,
		"Form":       input,
		"Visibility": models.VisibilityChoices,
		"Choices":    photos,
	}, nil
}

func (r *Routers) AlbumAddPage(c echo.Context) error {
	input := dto.AlbumInput{Visibility: string(models.VisibilityPrivate)}
	data, err := r.albumForm(c, "/images/albums/add", input, false)
	if err != nil {
		r.log.Error("failed to load owner photos", sl.Err(err))
		return err
	}
	return c.Render(http.StatusOK, "album_form", data)
}

func (r *Routers) AlbumAdd(c echo.Context) error {
	const op = "http.routers.AlbumAdd"

	log := r.log.With(slog.String("op", op))

	var input dto.AlbumInput
	if err := c.Bind(&input); err != nil {
		return echo.ErrBadRequest
	}

	data, err := r.albumForm(c, "/images/albums/add", input, false)
	if err != nil {
		log.Error("failed to load owner photos", sl.Err(err))
		return err
	}
	if err := c.Validate(input); err != nil {
		return renderInvalid(c, "album_form", data, err)
	}

	if _, err := r.AlbumService.Create(c.Request().Context(), *currentUser(c), input); err != nil {
		return renderInvalid(c, "album_form", data, err)
	}

	return c.Redirect(http.StatusFound, libraryPath)
}

func (r *Routers) AlbumEditPage(c echo.Context) error {
	const op = "http.routers.AlbumEditPage"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c)
	if err != nil {
		return err
	}

	album, err := r.AlbumService.Owned(c.Request().Context(), id, currentUser(c).ID)
	if err != nil {
		return r.notFound(log, err)
	}

	data, err := r.albumForm(c, c.Request().URL.Path, dto.AlbumInputFrom(album), true)
	if err != nil {
		log.Error("failed to load owner photos", sl.Err(err))
		return err
	}
	data["Album"] = album
	return c.Render(http.StatusOK, "album_form", data)
}

func (r *Routers) AlbumEdit(c echo.Context) error {
	const op = "http.routers.AlbumEdit"

	log := r.log.With(slog.String("op", op))

	id, err := pathID(c)
	if err != nil {
		return err
	}

	user := currentUser(c)
	album, err := r.AlbumService.Owned(c.Request().Context(), id, user.ID)
	if err != nil {
		return r.notFound(log, err)
	}

	var input dto.AlbumInput
	if err := c.Bind(&input); err != nil {
		return echo.ErrBadRequest
	}

	data, err := r.albumForm(c, c.Request().URL.Path, input, true)
	if err != nil {
		log.Error("failed to load owner photos", sl.Err(err))
		return err
	}
	data["Album"] = album
	if err := c.Validate(input); err != nil {
		return renderInvalid(c, "album_form", data, err)
	}

	if _, err := r.AlbumService.Update(c.Request().Context(), *user, id, input); err != nil {
		if _, ok := models.IsValidationError(err); ok {
			return renderInvalid(c, "album_form", data, err)
		}
		return r.notFound(log, err)
	}

	return c.Redirect(http.StatusFound, libraryPath)
}
