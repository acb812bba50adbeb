package http

import (
	"log/slog"
	"net/http"

	"imager/internal/domain/models"
	"imager/internal/lib/logger/sl"
	"imager/internal/transport/http/dto"

	"github.com/labstack/echo/v4"
)

// Profile shows a photographer page. Without a username it shows the
// viewer's own, which needs a login.
func (r *Routers) Profile(c echo.Context) error {
	const op = "http.routers.Profile"

	log := r.log.With(slog.String("op", op))

	username := c.Param("username")
	viewer := currentUser(c)
	if username == "" && viewer == nil {
		return loginRedirect(c)
	}

	page, err := r.ProfileService.Page(c.Request().Context(), username, viewer)
	if err != nil {
		return r.notFound(log, err)
	}

	return c.Render(http.StatusOK, "profile", r.covers(echo.Map{
		"Target":  page.User,
		"Profile": page.Profile,
		"IsOwner": page.Owner,
		"Photos":  page.Photos,
		"Albums":  page.Albums,
		"Counts":  page.Counts,

		"Cameras":     models.CameraChoices,
		"Services":    models.ServiceChoices,
		"PhotoStyles": models.PhotoStyleChoices,
	}))
}

func profileForm(input dto.ProfileInput) echo.Map {
	return echo.Map{
		"Form":        input,
		"Cameras":     models.CameraChoices,
		"Services":    models.ServiceChoices,
		"PhotoStyles": models.PhotoStyleChoices,
	}
}

func (r *Routers) ProfileEditPage(c echo.Context) error {
	const op = "http.routers.ProfileEditPage"

	log := r.log.With(slog.String("op", op))

	input, err := r.ProfileService.EditForm(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		log.Error("failed to load profile", sl.Err(err))
		return err
	}

	return c.Render(http.StatusOK, "profile_edit", profileForm(input))
}

// ProfileEdit always writes the session user's own profile.
func (r *Routers) ProfileEdit(c echo.Context) error {
	var input dto.ProfileInput
	if err := c.Bind(&input); err != nil {
		return echo.ErrBadRequest
	}

	data := profileForm(input)
	if err := c.Validate(input); err != nil {
		return renderInvalid(c, "profile_edit", data, err)
	}

	if err := r.ProfileService.Update(c.Request().Context(), currentUser(c).ID, input); err != nil {
		return renderInvalid(c, "profile_edit", data, err)
	}

	return c.Redirect(http.StatusFound, "/profile/")
}

// Photographers lists the active photographer profiles.
func (r *Routers) Photographers(c echo.Context) error {
	profiles, err := r.ProfileService.Directory(c.Request().Context())
	if err != nil {
		r.log.Error("failed to load photographers", sl.Err(err))
		return err
	}
	return c.Render(http.StatusOK, "photographers", echo.Map{
		"Profiles": profiles,
		"Cameras":  models.CameraChoices,
	})
}
