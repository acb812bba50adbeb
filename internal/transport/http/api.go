package http

import (
	"errors"
	"log/slog"
	"net/http"

	"imager/internal/lib/logger/sl"
	users "imager/internal/services/user_service"
	"imager/internal/transport/http/dto"
	"imager/internal/transport/http/dto/request"
	"imager/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// Token godoc
// @Summary Issue an API token
// @Description Exchanges username and password for a bearer JWT accepted by the listing API.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.TokenRequest true "Credentials"
// @Success 200 {object} response.Response{data=models.APIToken}
// @Failure 400 {object} response.ErrorResponse "Invalid request format"
// @Failure 401 {object} response.ErrorResponse "Authentication failed"
// @Failure 429 {object} response.ErrorResponse "Too many attempts"
// @Router /api/v1/token [post]
func (r *Routers) Token(c echo.Context) error {
	const op = "http.routers.Token"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.TokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", slog.String("username", req.Username))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails(
			response.ErrInvalidRequestFormat.Error, err.Error(),
		))
	}

	token, err := r.TokenService.IssueToken(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrTooManyAttempts):
			return c.JSON(http.StatusTooManyRequests, response.ErrorResponseWithDetails(
				response.ErrAuthenticationFailed.Error, "Too many failed login attempts.",
			))
		case errors.Is(err, users.ErrInvalidCredentials), errors.Is(err, users.ErrInactiveUser):
			return c.JSON(http.StatusUnauthorized, response.ErrorResponseWithDetails(
				response.ErrAuthenticationFailed.Error, "Unable to log in with provided credentials.",
			))
		}
		log.Error("failed to issue token", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(token))
}

// ListPhotos godoc
// @Summary List own photos
// @Description Returns every photo of the authenticated user, whatever its visibility. Not paginated.
// @Tags photos
// @Produce json
// @Success 200 {array} dto.PhotoResponse
// @Failure 403 {object} response.ErrorResponse "Authentication credentials were not provided"
// @Security BearerAuth
// @Router /api/v1/photos/ [get]
func (r *Routers) ListPhotos(c echo.Context) error {
	const op = "http.routers.ListPhotos"

	log := r.log.With(
		slog.String("op", op),
	)

	user := currentUser(c)
	photos, err := r.PhotoService.OwnerPhotos(c.Request().Context(), user.ID)
	if err != nil {
		log.Error("failed to list photos", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	out := make([]dto.PhotoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, dto.NewPhotoResponse(p, r.absoluteMediaURL(c, p.Image)))
	}

	return c.JSON(http.StatusOK, out)
}
