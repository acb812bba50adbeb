package http

import (
	"errors"
	"net/http"
	"strings"

	"imager/internal/lib/logger/sl"
	"imager/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

var errorMessages = map[int]string{
	http.StatusBadRequest:          "The request could not be understood.",
	http.StatusForbidden:           "You do not have permission to view this page.",
	http.StatusNotFound:            "The page you requested was not found.",
	http.StatusMethodNotAllowed:    "Method not allowed.",
	http.StatusInternalServerError: "Something went wrong on our side.",
}

// HTTPErrorHandler answers JSON under /api and renders the error page
// everywhere else. Internal details never reach the client.
func (r *Routers) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	if code >= http.StatusInternalServerError {
		r.log.Error("unhandled error",
			"method", c.Request().Method,
			"uri", c.Request().RequestURI,
			sl.Err(err),
		)
	}

	msg, ok := errorMessages[code]
	if !ok {
		msg = http.StatusText(code)
	}

	var werr error
	switch {
	case c.Request().Method == http.MethodHead:
		werr = c.NoContent(code)
	case strings.HasPrefix(c.Request().URL.Path, "/api/"):
		werr = c.JSON(code, response.ErrorResponseWithDetails(
			strings.ReplaceAll(strings.ToLower(http.StatusText(code)), " ", "_"), msg,
		))
	default:
		werr = c.Render(code, "error", echo.Map{"Code": code, "Message": msg})
	}
	if werr != nil {
		r.log.Error("failed to write error response", sl.Err(werr))
	}
}
