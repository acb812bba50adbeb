package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"imager/internal/lib/logger/sl"
	users "imager/internal/services/user_service"
	"imager/internal/transport/http/dto/response"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const jwtKey = "jwt"

// LoadUser resolves the session cookie to the active user and stores it in
// the context. Stale or inactive sessions are treated as anonymous.
func (r *Routers) LoadUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get(r.opts.SessionName, c)
		if err != nil {
			r.log.Debug("unreadable session", sl.Err(err))
			return next(c)
		}

		id, ok := sess.Values[sessionUserKey].(int64)
		if !ok || id == 0 {
			return next(c)
		}

		user, err := r.UserService.UserByID(c.Request().Context(), id)
		if err != nil {
			if !errors.Is(err, users.ErrUserNotFound) {
				r.log.Error("failed to load session user", slog.Int64("user_id", id), sl.Err(err))
			}
			return next(c)
		}
		if !user.IsActive {
			return next(c)
		}

		c.Set(userKey, &user)
		return next(c)
	}
}

// RequireLogin sends anonymous visitors to the login page, remembering
// where they were headed.
func (r *Routers) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentUser(c) == nil {
			return loginRedirect(c)
		}
		return next(c)
	}
}

// APIAuth verifies bearer tokens for the JSON API. Requests already carrying
// a session user, or no Authorization header at all, pass through untouched
// so RequireAPIUser can decide.
func (r *Routers) APIAuth(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    jwtKey,
		Skipper: func(c echo.Context) bool {
			if currentUser(c) != nil {
				return true
			}
			return !strings.HasPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		},
		ErrorHandler: func(c echo.Context, err error) error {
			r.log.Info("rejected bearer token", sl.Err(err))
			return c.JSON(http.StatusForbidden, response.ErrorResponseWithDetails(
				"not_authenticated", "Invalid or expired token.",
			))
		},
	})
}

// RequireAPIUser resolves a verified bearer token to its user. Without a
// session user or a token the request is refused with 403.
func (r *Routers) RequireAPIUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentUser(c) != nil {
			return next(c)
		}

		token, ok := c.Get(jwtKey).(*jwt.Token)
		if !ok {
			return c.JSON(http.StatusForbidden, response.ErrNotAuthenticated)
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.JSON(http.StatusForbidden, response.ErrNotAuthenticated)
		}

		user, err := r.TokenService.UserFromClaims(c.Request().Context(), claims)
		if err != nil {
			r.log.Info("bearer token without active user", sl.Err(err))
			return c.JSON(http.StatusForbidden, response.ErrNotAuthenticated)
		}

		c.Set(userKey, &user)
		return next(c)
	}
}
