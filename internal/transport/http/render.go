package http

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"imager/internal/domain/models"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const layoutFile = "templates/base.gohtml"

// StaticFS holds the bundled placeholder images and stylesheet.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Renderer executes one page template inside the shared layout. Every
// echo.Map it renders gains the current user and CSRF token.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer(mediaBaseURL string) (*Renderer, error) {
	const op = "http.NewRenderer"

	funcs := templateFuncs(mediaBaseURL)

	files, err := fs.Glob(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".gohtml")

		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("%s: parse %s: %w", op, name, err)
		}
		pages[name] = t
	}

	return &Renderer{pages: pages}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("http.Renderer.Render: unknown template %q", name)
	}

	if m, ok := data.(echo.Map); ok && c != nil {
		m["User"] = currentUser(c)
		m["CSRF"] = c.Get(middleware.DefaultCSRFConfig.ContextKey)
		m["Path"] = c.Request().URL.Path
	}

	return t.ExecuteTemplate(w, "base", data)
}

func templateFuncs(mediaBaseURL string) template.FuncMap {
	media := func(rel string) string {
		return strings.TrimRight(mediaBaseURL, "/") + "/" + strings.TrimLeft(rel, "/")
	}

	return template.FuncMap{
		"media": media,
		"cover": func(a models.Album, fallback string) string {
			if a.CoverImage != nil && *a.CoverImage != "" {
				return media(*a.CoverImage)
			}
			return fallback
		},
		"label": func(choices []models.Choice, v interface{}) string {
			return models.ChoiceLabel(choices, fmt.Sprint(v))
		},
		"has": func(values []string, v string) bool {
			for _, s := range values {
				if s == v {
					return true
				}
			}
			return false
		},
		// sanitized is for text that went through sanitize.Text on the way in.
		"sanitized": func(s string) template.HTML {
			return template.HTML(s)
		},
		"date": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
	}
}
