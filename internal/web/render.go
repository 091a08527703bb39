package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates/*.html templates/partials/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

// Renderer executes the embedded HTML templates.
type Renderer struct {
	templates *template.Template
	logger    *zap.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	t, err := template.ParseFS(templateFiles, "templates/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: t, logger: logger}, nil
}

// HTML renders a template as a full response with the given status code.
func (rn *Renderer) HTML(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := rn.templates.ExecuteTemplate(w, name, data); err != nil {
		rn.logger.Error("template render failed", zap.String("template", name), zap.Error(err))
	}
}

// Fragment renders a template into an arbitrary writer, for responses that
// stitch several fragments together.
func (rn *Renderer) Fragment(w io.Writer, name string, data interface{}) {
	if err := rn.templates.ExecuteTemplate(w, name, data); err != nil {
		rn.logger.Error("fragment render failed", zap.String("template", name), zap.Error(err))
	}
}
