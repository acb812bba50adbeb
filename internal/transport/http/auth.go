package http

import (
	"errors"
	"log/slog"
	"net/http"

	"imager/internal/lib/logger/sl"
	users "imager/internal/services/user_service"
	"imager/internal/transport/http/dto"

	"github.com/labstack/echo/v4"
)

const loginFailedMsg = "Please enter a correct username and password. Note that both fields may be case-sensitive."

func (r *Routers) LoginPage(c echo.Context) error {
	if currentUser(c) != nil {
		return c.Redirect(http.StatusFound, safeNext(c.QueryParam("next")))
	}
	return c.Render(http.StatusOK, "login", echo.Map{
		"Form": dto.LoginInput{Next: c.QueryParam("next")},
	})
}

func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var input dto.LoginInput
	if err := c.Bind(&input); err != nil {
		return echo.ErrBadRequest
	}

	data := echo.Map{"Form": dto.LoginInput{Username: input.Username, Next: input.Next}}
	if err := c.Validate(input); err != nil {
		return renderInvalid(c, "login", data, err)
	}

	user, err := r.UserService.Login(c.Request().Context(), input.Username, input.Password)
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, users.ErrInvalidCredentials):
			msg = loginFailedMsg
		case errors.Is(err, users.ErrInactiveUser):
			msg = "This account is inactive."
		case errors.Is(err, users.ErrTooManyAttempts):
			msg = "Too many failed login attempts. Please try again later."
		default:
			log.Error("login failed", sl.Err(err))
			return err
		}
		data["Errors"] = map[string]string{"form": msg}
		return c.Render(http.StatusOK, "login", data)
	}

	if err := r.startSession(c, user); err != nil {
		log.Error("failed to save session", sl.Err(err))
		return err
	}

	return c.Redirect(http.StatusFound, safeNext(input.Next))
}

func (r *Routers) Logout(c echo.Context) error {
	if err := r.endSession(c); err != nil {
		r.log.Error("failed to clear session", sl.Err(err))
	}
	return c.Redirect(http.StatusFound, "/")
}

func (r *Routers) RegisterPage(c echo.Context) error {
	return c.Render(http.StatusOK, "register", echo.Map{
		"Form": dto.RegisterInput{},
	})
}

func (r *Routers) Register(c echo.Context) error {
	var input dto.RegisterInput
	if err := c.Bind(&input); err != nil {
		return echo.ErrBadRequest
	}

	data := echo.Map{"Form": dto.RegisterInput{Username: input.Username, Email: input.Email}}
	if err := c.Validate(input); err != nil {
		return renderInvalid(c, "register", data, err)
	}

	if _, err := r.UserService.Register(c.Request().Context(), input); err != nil {
		return renderInvalid(c, "register", data, err)
	}

	return c.Redirect(http.StatusFound, "/accounts/register/complete/")
}

func (r *Routers) RegisterComplete(c echo.Context) error {
	return c.Render(http.StatusOK, "register_complete", echo.Map{})
}

// Activate consumes the emailed token. An invalid or reused token renders
// the failure page rather than an error status.
func (r *Routers) Activate(c echo.Context) error {
	user, err := r.UserService.Activate(c.Request().Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, users.ErrInvalidActivation) {
			return c.Render(http.StatusOK, "activate", echo.Map{"Activated": false})
		}
		r.log.Error("activation failed", sl.Err(err))
		return err
	}

	return c.Render(http.StatusOK, "activate", echo.Map{
		"Activated": true,
		"Username":  user.Username,
	})
}
