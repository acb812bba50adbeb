package http

import (
	"context"
	"net/http"
	"time"

	"imager/internal/lib/logger/sl"

	"github.com/labstack/echo/v4"
)

// Home shows a random public photo as the hero, or the configured fallback.
func (r *Routers) Home(c echo.Context) error {
	hero := echo.Map{
		"URL":   r.opts.HeroURL,
		"Title": r.opts.HeroTitle,
	}

	photo, ok, err := r.PhotoService.Hero(c.Request().Context())
	if err != nil {
		r.log.Error("failed to pick hero photo", sl.Err(err))
		return err
	}
	if ok {
		hero["URL"] = r.mediaURL(photo.Image)
		hero["Title"] = photo.Title
		hero["Photo"] = photo
	}

	return c.Render(http.StatusOK, "home", echo.Map{"Hero": hero})
}

type healthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks"`
}

// Health godoc
// @Summary Liveness check
// @Description Pings the database and redis.
// @Tags system
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} healthResponse
// @Router /health [get]
func (r *Routers) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(r.opts.HealthChecks))}
	status := http.StatusOK
	for name, check := range r.opts.HealthChecks {
		if err := check(ctx); err != nil {
			r.log.Warn("health check failed", "check", name, sl.Err(err))
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	return c.JSON(status, resp)
}
