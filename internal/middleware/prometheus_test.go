package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"imager/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetrics(t *testing.T) {
	e := echo.New()
	e.Use(PrometheusMetrics)
	e.GET("/images/photos/:id", func(c echo.Context) error {
		if c.Param("id") == "404" {
			return echo.ErrNotFound
		}
		return c.String(http.StatusOK, "ok")
	})

	for _, target := range []string{"/images/photos/1", "/images/photos/2", "/images/photos/404"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(
		metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/images/photos/:id", "200"),
	))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/images/photos/:id", "404"),
	))
}
