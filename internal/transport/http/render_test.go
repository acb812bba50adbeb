package http

import (
	"bytes"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"imager/internal/domain/models"
	"imager/internal/lib/paginator"
	"imager/internal/transport/http/dto"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer(t *testing.T) {
	r, err := NewRenderer("/media")
	require.NoError(t, err)

	e := echo.New()
	cover := "images/cover.png"
	now := time.Now()

	pages := map[string]echo.Map{
		"home":              {"Hero": echo.Map{"URL": "/static/hero.svg", "Title": "High-Five"}},
		"login":             {"Form": dto.LoginInput{Next: "/images/library"}, "Errors": map[string]string{"form": "bad"}},
		"register":          {"Form": dto.RegisterInput{}},
		"register_complete": {},
		"activate":          {"Activated": true, "Username": "alice"},
		"error":             {"Code": 404, "Message": "The page you requested was not found."},
		"photo_gallery":     {"Photos": []models.Photo{{ID: 1, Image: "images/a.png", Title: "A"}}},
		"album_gallery": {
			"Albums":            []models.Album{{ID: 1, Title: "Trip"}, {ID: 2, Title: "Dunes", CoverImage: &cover}},
			"DefaultCoverThumb": "/static/default_cover_thumb.svg",
		},
		"photo_detail": {"Photo": models.Photo{ID: 1, Title: "A", DateUploaded: now}, "IsOwner": true},
		"album_detail": {
			"Album":        models.Album{ID: 2, Title: "Trip"},
			"Photos":       []models.Photo{},
			"Page":         paginator.Resolve("", 0, 4),
			"DefaultCover": "/static/default_cover.svg",
		},
		"library": {
			"Photos":    []models.Photo{},
			"PhotoPage": paginator.Resolve("", 0, 4),
			"Albums":    []models.Album{},
			"AlbumPage": paginator.Resolve("2", 10, 4),
		},
		"photo_form": photoForm("/images/photos/add", dto.PhotoInput{Visibility: "PRIVATE"}, false),
		"album_form": {
			"Action": "/images/albums/add", "Form": dto.AlbumInput{Photos: []int64{1}, Cover: 1},
			"Visibility": models.VisibilityChoices, "Choices": []models.Photo{{ID: 1, Title: "A"}},
		},
		"profile": {
			"Target":  models.User{Username: "alice"},
			"Profile": models.Profile{Camera: models.CameraDSLR, Services: []string{"art"}},
			"IsOwner": true,
			"Counts":  &struct{ PhotoPrivate, PhotoPublic, AlbumPrivate, AlbumPublic int }{1, 2, 3, 4},
			"Cameras": models.CameraChoices, "Services": models.ServiceChoices, "PhotoStyles": models.PhotoStyleChoices,
		},
		"profile_edit":  profileForm(dto.ProfileInput{Services: []string{"art"}}),
		"photographers": {"Profiles": []models.Profile{{Username: "alice"}}, "Cameras": models.CameraChoices},
	}

	files, err := fs.Glob(templateFS, "templates/*.gohtml")
	require.NoError(t, err)
	assert.Len(t, pages, len(files)-1, "every page template is exercised")

	for name, data := range pages {
		t.Run(name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			c.Set("csrf", "tok123")

			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, name, data, c))
			assert.Contains(t, buf.String(), "<title>")
		})
	}

	t.Run("form pages carry the csrf token", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/login", nil), httptest.NewRecorder())
		c.Set("csrf", "tok123")

		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, "login", echo.Map{"Form": dto.LoginInput{}}, c))
		assert.Contains(t, buf.String(), `name="csrf_token" value="tok123"`)
	})

	t.Run("album cover falls back to the default", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/images/albums", nil), httptest.NewRecorder())

		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, "album_gallery", pages["album_gallery"], c))
		assert.Contains(t, buf.String(), `src="/static/default_cover_thumb.svg"`)
		assert.Contains(t, buf.String(), `src="/media/images/cover.png"`)
	})

	t.Run("sanitized descriptions render as html", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/images/photos/1", nil), httptest.NewRecorder())

		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, "photo_detail", echo.Map{
			"Photo": models.Photo{ID: 1, Title: "<i>A</i>", Description: "<b>bold</b>"},
		}, c))
		assert.Contains(t, buf.String(), "<b>bold</b>")
		assert.Contains(t, buf.String(), "&lt;i&gt;A&lt;/i&gt;")
	})

	t.Run("unknown page", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		assert.Error(t, r.Render(&bytes.Buffer{}, "nope", echo.Map{}, c))
	})

	t.Run("static assets are bundled", func(t *testing.T) {
		for _, name := range []string{"default_cover.svg", "default_cover_thumb.svg", "hero.svg", "imager.css"} {
			_, err := fs.Stat(StaticFS(), name)
			assert.NoError(t, err, name)
		}
	})
}
